// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

/*
Command server runs the tmmbs site: Firebase session sign-in, the public
services and gallery pages, bookings for signed-in users and the admin
dashboard.

Start-up order:

 1. Configuration (koanf: defaults, config.yaml, environment)
 2. Logging
 3. Google credentials (GOOGLE_CREDENTIALS_JSON, GOOGLE_APPLICATION_CREDENTIALS, then ADC)
 4. Identity oracle: Firebase Admin SDK or local JWKS verification
 5. Document store: badger or Firestore
 6. HTTP router and the supervisor tree

Local development without Google credentials:

	export IDENTITY_MODE=jwks
	export FIREBASE_PROJECT_ID=my-project
	export JWKS_URL=https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com
	export STORE_BACKEND=badger STORE_PATH=./data
	export ADMIN_EMAILS=owner@example.com
	./tmmbs

SIGINT and SIGTERM cancel the supervisor tree, which drains the HTTP server
within SHUTDOWN_TIMEOUT.
*/
package main
