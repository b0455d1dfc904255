// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import "html/template"

type pageData struct {
	Mode      string
	ReturnURL string
}

var signInTemplate = template.Must(template.New("signin").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if eq .Mode "signup"}}Create account{{else}}Sign in{{end}}</title>
<script src="https://www.gstatic.com/firebasejs/10.12.2/firebase-app-compat.js"></script>
<script src="https://www.gstatic.com/firebasejs/10.12.2/firebase-auth-compat.js"></script>
<script src="/firebaseConfig.js"></script>
</head>
<body>
<main>
<h1>{{if eq .Mode "signup"}}Create account{{else}}Sign in{{end}}</h1>
<form id="auth-form" data-mode="{{.Mode}}" data-return-url="{{.ReturnURL}}">
  <label>Email <input id="email" type="email" autocomplete="email" required></label>
  <label>Password <input id="password" type="password" autocomplete="{{if eq .Mode "signup"}}new-password{{else}}current-password{{end}}" required minlength="8"></label>
  <button type="submit">{{if eq .Mode "signup"}}Create account{{else}}Sign in{{end}}</button>
  <button type="button" id="google">Continue with Google</button>
  <p id="error" role="alert" hidden></p>
</form>
{{if eq .Mode "signup"}}<p><a href="/Auth/SignIn?returnUrl={{.ReturnURL}}">I already have an account</a></p>
{{else}}<p><a href="/Auth/SignUp?returnUrl={{.ReturnURL}}">Create an account</a></p>{{end}}
</main>
<script>
(function () {
  firebase.initializeApp(window.firebaseConfig);
  var auth = firebase.auth();
  var form = document.getElementById("auth-form");
  var errBox = document.getElementById("error");

  function fail(e) { errBox.textContent = (e && e.message) || "Sign-in failed"; errBox.hidden = false; }

  function exchange(cred) {
    return cred.user.getIdToken(true).then(function (idToken) {
      var body = new URLSearchParams({ idToken: idToken, returnUrl: form.dataset.returnUrl });
      return fetch("/auth/session", { method: "POST", body: body, credentials: "include" });
    }).then(function (res) {
      if (!res.ok) { throw new Error("Session could not be created"); }
      return res.json();
    }).then(function (out) { window.location.assign(out.returnUrl || "/"); });
  }

  form.addEventListener("submit", function (ev) {
    ev.preventDefault();
    var email = document.getElementById("email").value;
    var pw = document.getElementById("password").value;
    var p = form.dataset.mode === "signup"
      ? auth.createUserWithEmailAndPassword(email, pw)
      : auth.signInWithEmailAndPassword(email, pw);
    p.then(exchange).catch(fail);
  });

  document.getElementById("google").addEventListener("click", function () {
    auth.signInWithPopup(new firebase.auth.GoogleAuthProvider()).then(exchange).catch(fail);
  });
})();
</script>
</body>
</html>
`))
