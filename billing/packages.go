package billing

// CreditPackage is a purchasable bundle of generation credits.
type CreditPackage struct {
	// Price is the charge amount in USD cents.
	Price int64
	// Credits is how many credits the purchase grants.
	Credits int
}

// CreditPackages maps package IDs to their price and credit grant.
var CreditPackages = map[string]CreditPackage{
	"credits_10":  {Price: 500, Credits: 10},   // $5.00
	"credits_25":  {Price: 1000, Credits: 25},  // $10.00
	"credits_50":  {Price: 1800, Credits: 50},  // $18.00
	"credits_100": {Price: 3000, Credits: 100}, // $30.00
}
