package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           modelreg API
// @version         1.0
// @description     HTTP API for loading llama.cpp models, tuning their context parameters and running greedy decodes.
//
// @contact.name   modelreg maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
