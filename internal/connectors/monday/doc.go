// Package monday provides the board connector that lists resolved tickets
// and their attachments from the Monday.com GraphQL API.
//
// # Query Flow
//
//  1. Read the status column settings and resolve the required label to its index.
//  2. Page through every board item with items_page / next_items_page.
//  3. Keep items whose status matches and whose open date falls in the month.
//
// Filtering happens client-side; the API cannot filter on column text.
//
// # Rate Limiting
//
// Requests are throttled proactively and retried with exponential backoff
// on HTTP 429 and 5xx responses. Retry-After is honoured when present.
package monday
