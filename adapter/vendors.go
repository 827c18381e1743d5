package adapter

// USB vendor ID allow-lists, one per printer family. Connect-time device
// discovery only considers devices from the matching family so a receipt
// session can never grab the label printer, and vice versa.

// ReceiptVendorIDs covers the thermal roll printer vendors deployed in
// shops: Epson, Star, Bixolon, Winbond-based generics and the common
// CH340/CP210x USB-serial bridge chips they ship with.
var ReceiptVendorIDs = []uint16{
	0x04B8, // Epson
	0x0519, // Star Micronics
	0x1504, // Bixolon
	0x0416, // Winbond (generic 58mm boards)
	0x1A86, // QinHeng CH340 bridge
	0x10C4, // Silicon Labs CP210x bridge
}

// LabelVendorIDs covers the TSC family of label/barcode printers.
var LabelVendorIDs = []uint16{
	0x1203, // TSC Auto ID
	0x04F9, // Brother (TD series)
}

func vendorAllowed(vid uint16, allowed []uint16) bool {
	for _, v := range allowed {
		if v == vid {
			return true
		}
	}
	return false
}
