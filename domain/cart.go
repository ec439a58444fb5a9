package domain

import "time"

// CartLine is one pending purchase line. Name, Price and Image are a
// snapshot taken when the product was added to the cart; they are not
// re-read from the catalog at checkout time.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Subtotal is the line's quantity-weighted price.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Cart is the session-owned pending purchase. Lines are keyed by product id:
// adding a product that is already present merges quantities instead of
// appending a duplicate line. A line never carries a quantity below one.
type Cart struct {
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// TotalItems is the sum of all line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice is the sum of all line subtotals.
func (c *Cart) TotalPrice() float64 {
	total := 0.0
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// Line returns the line for the given product, if present.
func (c *Cart) Line(productID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Add merges the given line into the cart. If the product is already in the
// cart only its quantity grows; the stored snapshot fields stay as they were
// at first add. Lines with a non-positive quantity are ignored.
func (c *Cart) Add(line CartLine) {
	if line.Quantity < 1 {
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID {
			c.Lines[i].Quantity += line.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// SetQuantity replaces a line's quantity. A quantity below one removes the
// line entirely; a zero-quantity line is never kept. Returns false when the
// product is not in the cart.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if quantity < 1 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Quantity = quantity
		}
		return true
	}
	return false
}

// Remove deletes a line. Returns false when the product is not in the cart.
func (c *Cart) Remove(productID string) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}
