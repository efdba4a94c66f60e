package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SaleLine is a row of tt_jual_detail.
type SaleLine struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Barcode      string             `bson:"kode_barcode" json:"kode_barcode"`
	InvoiceGroup string             `bson:"no_faktur_group" json:"no_faktur_group"`
	OrderNo      string             `bson:"no_pesanan,omitempty" json:"no_pesanan,omitempty"`
	SystemDate   string             `bson:"tgl_system" json:"tgl_system"`
	Status       string             `bson:"status_valid" json:"status_valid"`
	ReturnStatus string             `bson:"status_kembali" json:"status_kembali"`
	Exchanged    *bool              `bson:"status_tukar,omitempty" json:"status_tukar,omitempty"`
	TotalPrice   float64            `bson:"harga_total" json:"harga_total"`
	Payments     []Payment          `bson:"pembayaran" json:"pembayaran"`
}

// PurchaseLine is a row of tt_beli_detail.
type PurchaseLine struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Barcode      string             `bson:"kode_barcode" json:"kode_barcode"`
	InvoiceGroup string             `bson:"no_faktur_group" json:"no_faktur_group"`
	InvoiceNo    string             `bson:"no_faktur_beli" json:"no_faktur_beli"`
	SystemDate   string             `bson:"tgl_system" json:"tgl_system"`
	Status       string             `bson:"status_valid" json:"status_valid"`
	Destroyed    bool               `bson:"status_hancur" json:"status_hancur"`
	Department   string             `bson:"kode_dept" json:"kode_dept"`
	Price        float64            `bson:"harga" json:"harga"`
}

// DestructionLine is a row of tt_hancur_detail.
type DestructionLine struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Barcode    string             `bson:"kode_barcode" json:"kode_barcode"`
	Group      string             `bson:"kode_group" json:"kode_group"`
	SystemDate string             `bson:"tgl_system" json:"tgl_system"`
	Weight     float64            `bson:"berat" json:"berat"`
}

// PurchaseDestruction is a row of tt_hancur_saldo_beli, one per department destroyed.
type PurchaseDestruction struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	SystemDate string             `bson:"tgl_system" json:"tgl_system"`
	Department string             `bson:"kode_dept" json:"kode_dept"`
}

// TransferLine is a row of tt_pindah_detail. An item may move several times a day.
type TransferLine struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Barcode    string             `bson:"kode_barcode" json:"kode_barcode"`
	Group      string             `bson:"kode_group" json:"kode_group"`
	SystemDate string             `bson:"tgl_system" json:"tgl_system"`
	Warehouse  string             `bson:"kode_gudang" json:"kode_gudang"`
	Tray       string             `bson:"kode_baki" json:"kode_baki"`
	SourceTray string             `bson:"kode_baki_asal" json:"kode_baki_asal"`
	Weight     float64            `bson:"berat" json:"berat"`
	InputDate  RecencyMarker      `bson:"input_date" json:"input_date"`
}

// Order is a row of tt_pesanan; one document carries its whole payment history.
type Order struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	OrderNo    string             `bson:"no_pesanan" json:"no_pesanan"`
	Date       string             `bson:"tanggal" json:"tanggal"`
	Validation string             `bson:"status_validasi" json:"status_validasi"`
	Status     string             `bson:"status_pesanan" json:"status_pesanan"`
	AmountPaid float64            `bson:"jumlah_bayar" json:"jumlah_bayar"`
	Payments   []Payment          `bson:"pembayaran" json:"pembayaran"`
}

// Consignment is a row of tt_titip.
type Consignment struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Barcode    string             `bson:"kode_barcode" json:"kode_barcode"`
	GroupNo    string             `bson:"no_titip_group" json:"no_titip_group"`
	SystemDate string             `bson:"tgl_system" json:"tgl_system"`
	Status     string             `bson:"status_valid" json:"status_valid"`
	State      string             `bson:"status_titipan" json:"status_titipan"`
	CancelDate string             `bson:"tgl_batal_titip,omitempty" json:"tgl_batal_titip,omitempty"`
	Deposit    float64            `bson:"dp" json:"dp"`
	Payments   []Payment          `bson:"pembayaran" json:"pembayaran"`
}

// DebtLine is a row of tt_hutang_detail (pawn-style debts).
type DebtLine struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	InvoiceNo   string             `bson:"no_faktur_hutang" json:"no_faktur_hutang"`
	DebtDate    string             `bson:"tgl_hutang" json:"tgl_hutang"`
	SystemDate  string             `bson:"tgl_system" json:"tgl_system"`
	SettledDate string             `bson:"tgl_lunas" json:"tgl_lunas"`
	Status      string             `bson:"status_valid" json:"status_valid"`
	State       string             `bson:"status_hutang" json:"status_hutang"`
	Amount      float64            `bson:"jumlah_hutang" json:"jumlah_hutang"`
	TotalPaid   float64            `bson:"total_bayar" json:"total_bayar"`
}

// ServiceLine is a row of tt_service_detail.
type ServiceLine struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	InvoiceNo  string             `bson:"no_faktur_service" json:"no_faktur_service"`
	SystemDate string             `bson:"tgl_system" json:"tgl_system"`
	Status     string             `bson:"status_valid" json:"status_valid"`
	Process    string             `bson:"status_proses" json:"status_proses"`
	TotalPaid  float64            `bson:"total_bayar" json:"total_bayar"`
	Payments   []Payment          `bson:"pembayaran" json:"pembayaran"`
}

// Item is the tm_barang master row for a physical piece.
type Item struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Barcode      string             `bson:"kode_barcode" json:"kode_barcode"`
	Group        string             `bson:"kode_group" json:"kode_group"`
	Warehouse    string             `bson:"kode_gudang" json:"kode_gudang"`
	Tray         string             `bson:"kode_toko" json:"kode_toko"`
	OrderNo      string             `bson:"no_pesanan,omitempty" json:"no_pesanan,omitempty"`
	StockOnHand  float64            `bson:"stock_on_hand" json:"stock_on_hand"`
	Destroyed    *bool              `bson:"status_hancur,omitempty" json:"status_hancur,omitempty"`
	LastPurchase string             `bson:"tgl_last_beli,omitempty" json:"tgl_last_beli,omitempty"`
}

// Balance is one row of the per-item stock ledger (tt_barang_saldo / th_barang_saldo).
type Balance struct {
	ID            primitive.ObjectID `bson:"_id" json:"_id"`
	Date          string             `bson:"tanggal,omitempty" json:"tanggal,omitempty"`
	Barcode       string             `bson:"kode_barcode" json:"kode_barcode"`
	Tray          string             `bson:"kode_toko,omitempty" json:"kode_toko,omitempty"`
	StockIn       float64            `bson:"stock_in" json:"stock_in"`
	StockOut      float64            `bson:"stock_out" json:"stock_out"`
	StockSold     float64            `bson:"stock_jual" json:"stock_jual"`
	StockDestroy  float64            `bson:"stock_hancur" json:"stock_hancur"`
	StockEnd      float64            `bson:"stock_akhir" json:"stock_akhir"`
	WeightIn      float64            `bson:"berat_in" json:"berat_in"`
	WeightOut     float64            `bson:"berat_out" json:"berat_out"`
	WeightDestroy float64            `bson:"berat_hancur" json:"berat_hancur"`
	WeightEnd     float64            `bson:"berat_akhir" json:"berat_akhir"`
}

// CashEntry is one line of the tt_cash_daily journal.
type CashEntry struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Date        string             `bson:"tanggal" json:"tanggal"`
	Status      string             `bson:"status" json:"status"`
	Description string             `bson:"deskripsi" json:"deskripsi"`
	Category    string             `bson:"kategori" json:"kategori"`
	Method      string             `bson:"jenis,omitempty" json:"jenis,omitempty"`
	AmountIn    float64            `bson:"jumlah_in" json:"jumlah_in"`
	AmountOut   float64            `bson:"jumlah_out" json:"jumlah_out"`
}

func (c CashEntry) In() decimal.Decimal {
	return decimal.NewFromFloat(c.AmountIn)
}

func (c CashEntry) Out() decimal.Decimal {
	return decimal.NewFromFloat(c.AmountOut)
}

// SystemInfo is the single tp_system row holding the store's business date.
type SystemInfo struct {
	SystemDate string `bson:"tgl_system" json:"tgl_system"`
}
