// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

/*
Package config loads Ritualboard configuration with Koanf v2.

Sources, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, /etc/ritualboard/config.yaml
 3. Environment variables from a fixed mapping table

A .env file in the working directory is loaded into the environment by the
server binary before Load runs.

Example config.yaml:

	server:
	  port: 1999
	leaderboard:
	  broadcast_delay: 1s
	  fallback_country: US
	storage:
	  backend: badger
	  path: /data/leaderboard
	geoip:
	  ip_lookup_enabled: true

Frequently used environment variables:

	HTTP_PORT, HTTP_HOST                 listener address
	BROADCAST_DELAY                      leaderboard coalescing window
	FALLBACK_COUNTRY                     country for connections without geolocation
	STORAGE_BACKEND                      badger, dynamodb or memory
	STORAGE_PATH                         Badger directory
	DYNAMODB_TABLE, DYNAMODB_REGION      DynamoDB backend
	CORS_ORIGINS                         comma-separated origins or *
	ADMIN_TOKEN                          enables POST /api/v1/admin/leaderboard/reset
	EVENTS_ENABLED, NATS_URL             click events (binary built with -tags nats)
	LOG_LEVEL, LOG_FORMAT                logging

Slice values (CORS_ORIGINS, GEOIP_*_HEADERS) are comma separated.
*/
package config
