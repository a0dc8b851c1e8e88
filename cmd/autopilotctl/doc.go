// Command autopilotctl runs optimization operations directly against the
// autopilot database, for operators and cron hosts without API access.
package main
