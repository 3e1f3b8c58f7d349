package main

// General API documentation for swaggo.
// Regenerate with: swag init -g cmd/planetd/docs.go -o docs
//
// @title           planetd API
// @version         1.0
// @description     HTTP API for generating and starring procedural planet names.
//
// @contact.name   planetd maintainers
// @contact.url    https://github.com/planetgen/planetd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
