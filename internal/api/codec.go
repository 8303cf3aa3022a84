package api

import (
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/minimart/console/internal/catalog"
	"github.com/minimart/console/internal/order"
)

// decodeBufSize is the jx streaming decoder buffer size.
const decodeBufSize = 4096

// decodeDecimal reads a JSON number (or number-in-string) as an exact
// decimal.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "read number")
	}
	v, err := decimal.NewFromString(strings.Trim(n.String(), `"`))
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "parse decimal")
	}
	return v, nil
}

// decodeNullableStr reads a string field that the backend may serialize as
// null.
func decodeNullableStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func encodeLogin(email, password string) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("email", func(e *jx.Encoder) { e.Str(email) })
		e.Field("password", func(e *jx.Encoder) { e.Str(password) })
	})
	return e.Bytes()
}

func decodeLoginResponse(r io.Reader) (*LoginResponse, error) {
	var out LoginResponse
	d := jx.Decode(r, decodeBufSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "token":
			out.Token, err = d.Str()
		case "id":
			out.ID, err = d.Int64()
		case "email":
			out.Email, err = d.Str()
		case "fullName":
			out.FullName, err = decodeNullableStr(d)
		case "roles":
			err = d.Arr(func(d *jx.Decoder) error {
				role, err := d.Str()
				if err != nil {
					return err
				}
				out.Roles = append(out.Roles, role)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeProducts(r io.Reader) ([]catalog.Product, error) {
	var out []catalog.Product
	d := jx.Decode(r, decodeBufSize)
	err := d.Arr(func(d *jx.Decoder) error {
		var p catalog.Product
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				p.ID, err = d.Int64()
			case "name":
				p.Name, err = d.Str()
			case "sku":
				p.SKU, err = d.Str()
			case "price":
				p.Price, err = decodeDecimal(d)
			case "stock":
				p.Stock, err = d.Int()
			case "category":
				p.Category, err = decodeNullableStr(d)
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeCustomers(r io.Reader) ([]catalog.Customer, error) {
	var out []catalog.Customer
	d := jx.Decode(r, decodeBufSize)
	err := d.Arr(func(d *jx.Decoder) error {
		var c catalog.Customer
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				c.ID, err = d.Int64()
			case "name":
				c.Name, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func encodeOrder(req order.Request) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("customerId", func(e *jx.Encoder) { e.Int64(req.CustomerID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range req.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Int64(item.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
					})
				}
			})
		})
	})
	return e.Bytes()
}

func decodeConfirmation(r io.Reader) (*order.Confirmation, error) {
	var out order.Confirmation
	d := jx.Decode(r, decodeBufSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			out.OrderID, err = d.Int64()
		case "totalAmount":
			out.TotalAmount, err = decodeDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeSalesSummary(r io.Reader) (*SalesSummary, error) {
	var out SalesSummary
	d := jx.Decode(r, decodeBufSize)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "totalRevenue":
			out.TotalRevenue, err = decodeDecimal(d)
		case "totalOrders":
			out.TotalOrders, err = d.Int()
		case "topProduct":
			out.TopProduct, err = decodeNullableStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
