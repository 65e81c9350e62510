/*
Package automation implements the webhook automation collaborator.

WebhookAutomation POSTs the full command as JSON to a configured
endpoint and expects a 2xx response, optionally carrying a reference
and message for the requesting client. Retries are the endpoint's
responsibility.
*/
package automation
