// Package model defines the shared record types exchanged with the
// conversation service: messages, conversations, participants, and
// invite links. Field names follow the service's wire format.
package model
