// Package connectors holds the ticket sources the report can read from.
//
// Each source implements driven.TicketSource for one board provider;
// monday is the only one today.
package connectors
