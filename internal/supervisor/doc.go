// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

/*
Package supervisor runs the long-lived parts of the server under a suture v4
supervisor tree.

	root ("tmmbs")
	├── store-layer
	│   └── StoreGCService (badger backend only)
	└── api-layer
	    └── HTTPServerService

A crashing service is restarted with suture's failure decay and backoff; a
failure in the store layer does not restart the HTTP server. Supervisor
events are logged through sutureslog into the zerolog-backed slog logger
from package logging.

Services return nil to stop for good and an error to be restarted. They
must return promptly once their context is canceled.
*/
package supervisor
