package constants

const (
	BuyGold              = "buy_gold"
	SellGold             = "sell_gold"
	Invest               = "invest"
	TopupWallet          = "topup_wallet"
	ReplySupport         = "reply_support"
	ManageCustomers      = "manage_customers"
	ManagePaymentMethods = "manage_payment_methods"
	ManagePlans          = "manage_plans"
)
