// Package server runs the short-lived local HTTP server behind browser logins.
//
// The catalog backend finishes its Yandex OAuth flow by redirecting the
// browser to {frontend}/login?token=.... `kino auth yandex` points that
// frontend address at a [CallbackServer] on localhost, opens the browser at
// [YandexLoginURL], and waits for the [LoginHandler] to capture the token.
//
// Routing uses chi with request IDs, panic recovery and a debug
// [RequestLogger]. Only the first callback is processed; later hits get a
// 400 so a replayed redirect cannot overwrite the session.
package server
