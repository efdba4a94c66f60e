package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

// Payment is one tender line embedded in a sale, order, consignment or service document.
// Some rules depend on whether a key exists at all, so presence is tracked next to the value.
type Payment struct {
	Method          string  `bson:"jenis" json:"jenis"`
	Amount          float64 `bson:"jumlah_rp" json:"jumlah_rp"`
	FeePercent      float64 `bson:"fee,omitempty" json:"fee,omitempty"`
	Description     string  `bson:"deskripsi,omitempty" json:"deskripsi,omitempty"`
	InvoiceGroup    string  `bson:"no_faktur_group,omitempty" json:"no_faktur_group,omitempty"`
	HasDescription  bool    `bson:"-" json:"-"`
	HasInvoiceGroup bool    `bson:"-" json:"-"`
}

type paymentFields struct {
	Method       string  `bson:"jenis"`
	Amount       float64 `bson:"jumlah_rp"`
	FeePercent   float64 `bson:"fee"`
	Description  string  `bson:"deskripsi"`
	InvoiceGroup string  `bson:"no_faktur_group"`
}

func (p *Payment) UnmarshalBSON(data []byte) error {
	var f paymentFields
	if err := bson.Unmarshal(data, &f); err != nil {
		return err
	}
	raw := bson.Raw(data)
	_, descErr := raw.LookupErr("deskripsi")
	_, groupErr := raw.LookupErr("no_faktur_group")

	*p = Payment{
		Method:          f.Method,
		Amount:          f.Amount,
		FeePercent:      f.FeePercent,
		Description:     f.Description,
		InvoiceGroup:    f.InvoiceGroup,
		HasDescription:  descErr == nil,
		HasInvoiceGroup: groupErr == nil,
	}
	return nil
}

func (p Payment) MarshalBSON() ([]byte, error) {
	doc := bson.D{
		{Key: "jenis", Value: p.Method},
		{Key: "jumlah_rp", Value: p.Amount},
	}
	if p.FeePercent != 0 {
		doc = append(doc, bson.E{Key: "fee", Value: p.FeePercent})
	}
	if p.HasDescription || p.Description != "" {
		doc = append(doc, bson.E{Key: "deskripsi", Value: p.Description})
	}
	if p.HasInvoiceGroup || p.InvoiceGroup != "" {
		doc = append(doc, bson.E{Key: "no_faktur_group", Value: p.InvoiceGroup})
	}
	return bson.Marshal(doc)
}

func (p Payment) AmountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(p.Amount)
}

func (p Payment) Fee() decimal.Decimal {
	return decimal.NewFromFloat(p.FeePercent)
}

// PaymentKey identifies a (method, fee) bucket; one cash journal entry is expected per bucket.
type PaymentKey struct {
	Method string
	Fee    string
}

func (p Payment) Key() PaymentKey {
	return PaymentKey{Method: p.Method, Fee: p.Fee().String()}
}
