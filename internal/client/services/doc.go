// Package services holds the application services of the yama CLI: file
// tree access and the login session, both on top of the API client.
package services
