package domain

// Charge is the gateway's view of a freshly created Pix charge: the assigned
// payment id plus the QR payload the frontend renders.
type Charge struct {
	PaymentID    string
	QRCode       string
	QRCodeBase64 string
}
