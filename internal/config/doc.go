// Package config resolves the settings of an upload run.
//
// The token comes from SCREEPS_TOKEN, optionally seeded from a dotenv file.
// The server URL comes from an optional YAML settings file or a flag and
// defaults to the official server.
package config
