package models

// Cash journal category codes as stored by the POS (already encoded upstream, so they are
// compared verbatim and never passed through the text transform).
const (
	CashCategorySale              = "B278C07EC8B1C1B57F"
	CashCategorySaleCancel        = "A474C675BF90C5B97FB288B380B4BE"
	CashCategoryPurchase          = "B278BF76B8BCBEB57F"
	CashCategoryPurchaseCancel    = "A474C675BF90B7B97DB1"
	CashCategoryOrderDeposit      = "B278C575C1B1C3"
	CashCategoryOrderCancel       = "A474C675BF90C5B984A981B382"
	CashCategoryOrderTopUp        = "B674BF76B4B895B8818883B787B4BEB6C2"
	CashCategoryConsignmentLegacy = "B67CC67DC3B1C3"
	CashCategoryConsignment       = "B674BF76B4B895B8818887BB88BCC0"
	CashCategoryConsignmentCancel = "A474C675BF90C9BD85B183"
	CashCategoryDebt              = "AA88C675C1B7"
	CashCategoryDebtCancel        = "AA88C675C1B795B672BC74BE"
	CashCategoryDebtSettlement    = "AA88C675C1B795C086B674C5"
	CashCategoryDebtSettleCancel  = "A474C675BF90BDC985A981B954BFC5C3B584"
	CashCategoryServiceIntake     = "B578C48ABCB3BA"
	CashCategoryServicePickup     = "B578C48ABCB3BA9472B575BB80"
	CashCategoryServiceCancel     = "A474C675BF90C8B983BE7CB579"
)

// PaymentTagOrderDeposit is the `deskripsi` an order payment carries when it is the initial
// deposit ("BAYAR DP"). Top-up payments carry no `deskripsi` key at all.
const PaymentTagOrderDeposit = "A474CB75C590B9C4"

// CashStatusOpen is the only journal status the audit expects to see.
const CashStatusOpen = "OPEN"
