package core

// MockTransactions returns a fresh copy of the built-in dataset used when no
// real source is configured.
func MockTransactions() []Transaction {
	return []Transaction{
		{ID: "1", Date: NewDate(2024, 1, 15), Amount: Money{Cents: 240000}, Category: "Sales", Status: StatusCompleted, User: "John Smith", Description: "Product sales revenue"},
		{ID: "2", Date: NewDate(2024, 1, 14), Amount: Money{Cents: -35000}, Category: "Marketing", Status: StatusPending, User: "Jane Doe", Description: "Google Ads campaign"},
		{ID: "3", Date: NewDate(2024, 1, 13), Amount: Money{Cents: 120000}, Category: "Consulting", Status: StatusCompleted, User: "Mike Johnson", Description: "Consulting services"},
		{ID: "4", Date: NewDate(2024, 1, 12), Amount: Money{Cents: -8550}, Category: "Office", Status: StatusFailed, User: "Sarah Wilson", Description: "Office supplies"},
		{ID: "5", Date: NewDate(2024, 1, 11), Amount: Money{Cents: 320000}, Category: "Sales", Status: StatusCompleted, User: "David Brown", Description: "Enterprise client payment"},
		{ID: "6", Date: NewDate(2024, 1, 10), Amount: Money{Cents: -45000}, Category: "Technology", Status: StatusCompleted, User: "Lisa Garcia", Description: "Software licenses"},
	}
}
