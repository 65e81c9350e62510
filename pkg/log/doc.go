/*
Package log provides structured logging for Lookout built on zerolog.

Call Init once at startup, then use the global Logger or the With*
helpers to create child loggers with standard fields (component,
conn_id, job, alert_id). Console output is the default; JSONOutput
switches to machine-readable JSON for production.
*/
package log
