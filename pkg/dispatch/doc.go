/*
Package dispatch forwards client-issued deployment and scaling commands
to automation collaborators.

Dispatch is asynchronous: the command is validated, recorded as pending
and handed to a goroutine; the caller gets the accepted command
immediately. When the collaborator responds, the terminal status
(triggered or failed) is persisted and a result event is sent to the
requesting connection only. Nothing about a command is ever broadcast.

There is no queue and there are no retries. Each command is one
request/response pair bound to the issuing connection; if that
connection closes before the collaborator answers, the result is
discarded. Collaborator error details stay in the logs; clients receive
a generic failure message.

Validation is per kind: deployments require project and environment,
scaling requires a service. Malformed requests fail fast with
ErrValidation before any collaborator call.

In-flight executions are tracked; Wait blocks until they have finished
so shutdown can close the store after the last terminal status is
persisted.
*/
package dispatch
