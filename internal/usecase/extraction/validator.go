package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"findoc-pipeline/internal/domain/document"

	"github.com/shopspring/decimal"
)

// reconcileEpsilon is the tolerance for header-vs-items amount checks.
var reconcileEpsilon = decimal.New(1, -2) // 0.01

const defaultCurrency = "BAM"

// Validate maps a raw AI response to a typed Result or a RejectionError.
// It is pure: no storage, no network. The discriminant flag is checked first;
// a negative flag rejects the whole document with the AI-supplied explanation
// regardless of field-level content.
func Validate(dt document.Type, raw json.RawMessage) (*Result, error) {
	if !dt.Valid() {
		return nil, rejectf("unknown document type %q", string(dt))
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil || doc == nil {
		return nil, rejectf("response is not a JSON object")
	}

	flag, ok := doc[dt.Discriminant()]
	if !ok {
		return nil, rejectf("response missing %s flag", dt.Discriminant())
	}
	isMatch, ok := flag.(bool)
	if !ok {
		return nil, rejectf("%s flag is not a boolean", dt.Discriminant())
	}
	if !isMatch {
		reason := optString(doc, "confidence_notes")
		if reason == "" {
			reason = fmt.Sprintf("document is not a %s according to the extraction service", dt)
		}
		return nil, &RejectionError{Reason: reason}
	}

	res := &Result{DocumentType: dt}
	if err := validateHeader(dt, doc, &res.Header); err != nil {
		return nil, err
	}
	items, err := validateItems(doc)
	if err != nil {
		return nil, err
	}
	res.Items = items

	reconcile(dt, res)
	return res, nil
}

func validateHeader(dt document.Type, doc map[string]any, h *Header) error {
	counterparty := stringify(doc[dt.CounterpartyField()])
	if counterparty == "" {
		return rejectf("missing required field %s", dt.CounterpartyField())
	}
	h.CounterpartyRef = counterparty
	h.Notes = optString(doc, "notes")

	cur := strings.ToUpper(strings.TrimSpace(optString(doc, "currency")))
	switch {
	case cur == "":
		cur = defaultCurrency
	case len(cur) != 3:
		return rejectf("invalid currency %q", cur)
	}
	h.Currency = cur

	var err error
	switch dt {
	case document.TypePurchaseInvoice, document.TypeSalesInvoice:
		h.DocumentNumber = optString(doc, "invoiceNumber")
		if h.IssueDate, err = reqDate(doc, "invoiceDate"); err != nil {
			return err
		}
		if h.DueDate, err = optDate(doc, "dueDate"); err != nil {
			return err
		}
		if h.NetTotal, err = reqAmount(doc, "netTotal"); err != nil {
			return err
		}
		if h.VATTotal, err = reqAmount(doc, "vatAmount"); err != nil {
			return err
		}
		gross, present, gerr := optAmount(doc, "grossTotal")
		if gerr != nil {
			return gerr
		}
		if present {
			h.GrossTotal = gross
		} else {
			h.GrossTotal = h.NetTotal.Add(h.VATTotal)
		}

	case document.TypeContract:
		h.DocumentNumber = optString(doc, "contractNumber")
		if h.IssueDate, err = reqDate(doc, "contractDate"); err != nil {
			return err
		}
		if h.DueDate, err = optDate(doc, "expiryDate"); err != nil {
			return err
		}
		value, verr := reqAmount(doc, "contractValue")
		if verr != nil {
			return verr
		}
		h.NetTotal = value
		h.GrossTotal = value

	case document.TypeBankStatement:
		h.DocumentNumber = optString(doc, "statementNumber")
		if h.IssueDate, err = reqDate(doc, "statementDate"); err != nil {
			return err
		}
		net, present, aerr := optAmount(doc, "netTotal")
		if aerr != nil {
			return aerr
		}
		if present {
			h.NetTotal = net
			h.GrossTotal = net
		}
	}
	return nil
}

func validateItems(doc map[string]any) ([]Item, error) {
	rawItems, ok := doc["items"]
	if !ok {
		return nil, nil
	}
	list, ok := rawItems.([]any)
	if !ok {
		return nil, rejectf("items is not an array")
	}
	out := make([]Item, 0, len(list))
	for i, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, rejectf("items[%d] is not an object", i)
		}
		it := Item{
			OrderNumber: i + 1,
			Description: optString(m, "description"),
		}
		if n, ok := m["orderNumber"]; ok {
			num, ok := n.(json.Number)
			if !ok {
				return nil, rejectf("items[%d].orderNumber is not a number", i)
			}
			v, err := num.Int64()
			if err != nil {
				return nil, rejectf("items[%d].orderNumber is not an integer", i)
			}
			it.OrderNumber = int(v)
		}

		var err error
		if it.NetSubtotal, err = reqAmountAt(m, "netSubtotal", i); err != nil {
			return nil, err
		}
		vat, present, verr := optAmount(m, "vatAmount")
		if verr != nil {
			return nil, rejectf("items[%d]: %s", i, rejectionReason(verr))
		}
		if present {
			it.VATAmount = vat
		}
		gross, present, gerr := optAmount(m, "grossSubtotal")
		if gerr != nil {
			return nil, rejectf("items[%d]: %s", i, rejectionReason(gerr))
		}
		if present {
			it.GrossSubtotal = gross
		} else {
			it.GrossSubtotal = it.NetSubtotal.Add(it.VATAmount)
		}

		if q, present, qerr := optAmount(m, "quantity"); qerr != nil {
			return nil, rejectf("items[%d]: %s", i, rejectionReason(qerr))
		} else if present {
			it.Quantity = &q
		}
		if p, present, perr := optAmount(m, "unitPrice"); perr != nil {
			return nil, rejectf("items[%d]: %s", i, rejectionReason(perr))
		} else if present {
			it.UnitPrice = &p
		}

		out = append(out, it)
	}
	return out, nil
}

// reconcile compares summed line items against header totals. Mismatches
// beyond the epsilon surface as warnings, never rejections.
func reconcile(dt document.Type, res *Result) {
	if len(res.Items) == 0 {
		return
	}
	sumNet, sumGross := decimal.Zero, decimal.Zero
	for _, it := range res.Items {
		sumNet = sumNet.Add(it.NetSubtotal)
		sumGross = sumGross.Add(it.GrossSubtotal)
	}

	if dt == document.TypeBankStatement && res.Header.NetTotal.IsZero() {
		res.Header.NetTotal = sumNet
		res.Header.GrossTotal = sumGross
		return
	}

	if sumNet.Sub(res.Header.NetTotal).Abs().GreaterThan(reconcileEpsilon) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("line-item net sum %s differs from header net total %s",
				sumNet.StringFixed(2), res.Header.NetTotal.StringFixed(2)))
	}
	if sumGross.Sub(res.Header.GrossTotal).Abs().GreaterThan(reconcileEpsilon) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("line-item gross sum %s differs from header gross total %s",
				sumGross.StringFixed(2), res.Header.GrossTotal.StringFixed(2)))
	}
}

// ---- field helpers ----

func optString(doc map[string]any, key string) string {
	if v, ok := doc[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// stringify renders a string or numeric value as a trimmed string; ids like
// supplierId arrive as either.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	}
	return ""
}

func reqAmount(doc map[string]any, key string) (decimal.Decimal, error) {
	d, present, err := optAmount(doc, key)
	if err != nil {
		return decimal.Zero, err
	}
	if !present {
		return decimal.Zero, rejectf("missing required field %s", key)
	}
	return d, nil
}

func reqAmountAt(m map[string]any, key string, idx int) (decimal.Decimal, error) {
	d, present, err := optAmount(m, key)
	if err != nil {
		return decimal.Zero, rejectf("items[%d]: %s", idx, rejectionReason(err))
	}
	if !present {
		return decimal.Zero, rejectf("items[%d]: missing required field %s", idx, key)
	}
	return d, nil
}

// optAmount coerces a numeric or locale-formatted string value to a
// fixed-point decimal rounded to 2 places.
func optAmount(doc map[string]any, key string) (decimal.Decimal, bool, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return decimal.Zero, false, nil
	}
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = normalizeAmount(t)
	default:
		return decimal.Zero, false, rejectf("field %s is not a number", key)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, rejectf("field %s: cannot parse %q as an amount", key, v)
	}
	return d.Round(2), true, nil
}

// normalizeAmount converts locale-formatted amounts ("1.234,56") to the
// canonical dot-decimal form. When both separators appear the rightmost one
// is the decimal separator.
func normalizeAmount(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}

var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02.01.2006.",
	"02.01.2006",
	"01/02/2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func reqDate(doc map[string]any, key string) (*time.Time, error) {
	t, err := optDate(doc, key)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, rejectf("missing required field %s", key)
	}
	return t, nil
}

func optDate(doc map[string]any, key string) (*time.Time, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil, rejectf("field %s is not a date string", key)
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, rejectf("field %s: %v", key, err)
	}
	return &t, nil
}

func rejectionReason(err error) string {
	if re, ok := err.(*RejectionError); ok {
		return re.Reason
	}
	return err.Error()
}
