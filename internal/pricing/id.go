package pricing

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ProductID is a product id as browsers and manifests send it: a JSON number
// or a numeric string such as "3". Anything else decodes to 0, which matches
// no catalog row and so prices as an unknown product.
type ProductID int64

func (id *ProductID) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case json.Number:
		*id = parseProductID(v.String())
	case string:
		*id = parseProductID(v)
	default:
		*id = 0
	}
	return nil
}

func parseProductID(s string) ProductID {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ProductID(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64/2 {
		return 0
	}
	return ProductID(f)
}
