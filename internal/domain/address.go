package domain

// Address is a shipping address held in the local address book.
type Address struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	Regency       string `json:"regency"`
	District      string `json:"district"`
	Village       string `json:"village"`
	DetailAddress string `json:"detailAddress"`
	PostalCode    string `json:"postalCode"`
	IsActive      bool   `json:"isActive"`
}
