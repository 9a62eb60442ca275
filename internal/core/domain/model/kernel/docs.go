// Package kernel holds the value objects shared by every aggregate of the
// fulfillment domain. At the moment that is the UUID identifier used for
// orders, delivery agents and customers.
package kernel
