// Package socket models one traced socket: its role, its request/response
// protocol state, the transaction in flight, and the hooks the interceptor runs
// around every read and write.
//
// # State machine
//
// Server sockets start in StateWillRead and client sockets in StateWillWrite.
// Only successful I/O moves a record:
//
//	SERVER  WILL_READ|WROTE  --read-->  READ    (RECV_REQUEST, new transaction)
//	        READ             --read-->  READ    (request continues)
//	        WILL_WRITE|READ  --write--> WROTE   (SEND_RESPONSE, record emitted)
//
//	CLIENT  WILL_WRITE|READ  --write--> WROTE   (SEND_REQUEST, new transaction)
//	        WROTE            --write--> WROTE   (request continues)
//	        WILL_READ|WROTE  --read-->  READ    (RECV_RESPONSE, record emitted)
//
// NextAction is the pure classification used before the real call to decide
// whether it opens or closes a transaction.
//
// # Ownership
//
// A Record is owned by the registry entry of its descriptor and is only mutated
// by the thread currently doing I/O on that descriptor. Records carry no locks;
// callers that share one descriptor between threads concurrently must serialize
// their I/O themselves, exactly as they already must for the byte stream.
package socket
