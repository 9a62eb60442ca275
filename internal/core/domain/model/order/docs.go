// Package order implements the Order aggregate of the dispatch core.
//
// The package includes:
//   - Order: the aggregate root owning the delivery lifecycle and the request negotiation
//   - Status: the forward-only lifecycle Pending -> Accepted -> OutForDelivery -> Delivered
//   - DeliveryRequest: the agent/admin negotiation None -> Pending -> Approved | Rejected
//   - Customer and Product: snapshots copied into the order when it is placed
//   - DomainEvent: facts recorded by every mutation and published after commit
//
// Key business rules:
//   - an assigned order cannot be requested or accepted again
//   - only the assigned agent advances the status, and only forward
//   - the admin override sets any status regardless of order
//   - a newer pending request overwrites an older one
package order
