package pos

import "fmt"

// Tag is one printed garment label, corresponding to exactly one unit of
// a line item's quantity.
type Tag struct {
	LaundryName   string `json:"laundryName"`
	BillNumber    string `json:"billNumber"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	ItemName      string `json:"itemName"`
	WashType      string `json:"washType,omitempty"`
	Barcode       string `json:"barcode,omitempty"`
	QRData        string `json:"qrData,omitempty"`
	TagIndex      int    `json:"tagIndex"`
	TotalTags     int    `json:"totalTags"`
}

// ExpandTags flattens an order into one tag per unit of quantity. Tags for
// one item are emitted consecutively in line-item order; TagIndex increments
// monotonically across the whole order and TotalTags is the order-wide unit
// count, fixed before expansion begins.
func ExpandTags(o *Order) []Tag {
	total := o.TotalUnits()
	tags := make([]Tag, 0, total)

	index := 0
	for _, item := range o.Items {
		for unit := 1; unit <= item.Quantity; unit++ {
			index++
			tag := Tag{
				LaundryName:   o.LaundryName,
				BillNumber:    o.BillNumber,
				CustomerName:  o.CustomerName,
				CustomerPhone: o.CustomerPhone,
				ItemName:      item.Name,
				WashType:      item.WashType,
				TagIndex:      index,
				TotalTags:     total,
			}
			if o.GenerateBarcodes {
				tag.Barcode = fmt.Sprintf("%s-%s-%d", o.BillNumber, item.ID, unit)
			}
			tags = append(tags, tag)
		}
	}
	return tags
}
