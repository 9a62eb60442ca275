package order

import (
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Customer is the customer data copied into the order when it is placed.
// Later profile changes never reach existing orders.
type Customer struct {
	id       *kernel.UUID
	name     string
	email    string
	address  string
	quantity int
}

// NewCustomer validates the customer snapshot. A zero quantity defaults to 1;
// id may be nil for guest checkouts.
func NewCustomer(id *kernel.UUID, name, email, address string, quantity int) (Customer, error) {
	c := Customer{
		name:     strings.TrimSpace(name),
		email:    strings.TrimSpace(email),
		address:  strings.TrimSpace(address),
		quantity: quantity,
	}
	if c.quantity == 0 {
		c.quantity = 1
	}

	var idErr error
	if id != nil {
		if idErr = id.Validate(); idErr == nil {
			cid := *id
			c.id = &cid
		}
	}

	if err := errors.Join(
		idErr,
		required("customer.name", c.name),
		required("customer.address", c.address),
		validateEmail(c.email),
		validateQuantity(c.quantity),
	); err != nil {
		return Customer{}, err
	}
	return c, nil
}

// ID returns the customer account id, nil for guest orders.
func (c Customer) ID() *kernel.UUID {
	if c.id == nil {
		return nil
	}
	id := *c.id
	return &id
}

// Name returns the customer name.
func (c Customer) Name() string { return c.name }

// Email returns the customer email.
func (c Customer) Email() string { return c.email }

// Address returns the delivery address.
func (c Customer) Address() string { return c.address }

// Quantity returns the number of ordered items.
func (c Customer) Quantity() int { return c.quantity }

// Product is the catalog data copied into the order when it is placed.
type Product struct {
	id    string
	title string
	price float64
	image string
}

// NewProduct validates the product snapshot. The product id is the catalog's
// opaque identifier and is not interpreted.
func NewProduct(id, title string, price float64, image string) (Product, error) {
	p := Product{
		id:    strings.TrimSpace(id),
		title: strings.TrimSpace(title),
		price: price,
		image: strings.TrimSpace(image),
	}

	var priceErr error
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		priceErr = errs.NewValueIsOutOfRangeError("product.price", price, 0, math.MaxFloat64)
	}

	if err := errors.Join(
		required("product.id", p.id),
		required("product.title", p.title),
		priceErr,
	); err != nil {
		return Product{}, err
	}
	return p, nil
}

// ID returns the catalog product id.
func (p Product) ID() string { return p.id }

// Title returns the product title.
func (p Product) Title() string { return p.title }

// Price returns the unit price at ordering time.
func (p Product) Price() float64 { return p.price }

// Image returns the product image reference, possibly empty.
func (p Product) Image() string { return p.image }

func required(param, value string) error {
	if value == "" {
		return errs.NewValueIsRequiredError(param)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errs.NewValueIsRequiredError("customer.email")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("customer.email", err)
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause(
			"customer.quantity",
			fmt.Errorf("%d is not greater than 0", quantity),
		)
	}
	return nil
}
