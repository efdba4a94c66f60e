package models

// Collections of the upstream POS database. The audit never writes to any of them.
const (
	CollectionSaleLines         = "tt_jual_detail"
	CollectionPurchaseLines     = "tt_beli_detail"
	CollectionDestructionLines  = "tt_hancur_detail"
	CollectionPurchaseDestroyed = "tt_hancur_saldo_beli"
	CollectionTransferLines     = "tt_pindah_detail"
	CollectionOrders            = "tt_pesanan"
	CollectionConsignments      = "tt_titip"
	CollectionDebtLines         = "tt_hutang_detail"
	CollectionServiceLines      = "tt_service_detail"
	CollectionItems             = "tm_barang"
	CollectionBalanceLive       = "tt_barang_saldo"
	CollectionBalanceClosed     = "th_barang_saldo"
	CollectionCashDaily         = "tt_cash_daily"
	CollectionSystem            = "tp_system"
)

// Status vocabulary shared by the transactional collections.
const (
	StatusOpen   = "OPEN"
	StatusDone   = "DONE"
	StatusCanc   = "CANC"
	StatusClos   = "CLOS"
	StatusClose  = "CLOSE"
	StatusFinish = "FINISH"
)

const (
	// GroupAccessories lines are not tracked per barcode and are left out of the stock audits.
	GroupAccessories    = "ACC"
	// LocationConsignment marks an item parked in a consignment (titip) warehouse/tray.
	LocationConsignment = "TITIP"
	// NoBarcode is written on purchase lines of untagged goods.
	NoBarcode           = "-"
	// NotSettled is the tgl_lunas value of a debt that has not been paid off.
	NotSettled          = "-"
)
