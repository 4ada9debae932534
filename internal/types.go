package internal

type CustomerRecord struct {
	ID              int64
	CompanyName     string
	Branch          string
	ContactPerson   string
	ContactNumber   string
	DeliveryAddress string
}

// Display is the identity shown to staff: "Company" or "Company - Branch".
func (c CustomerRecord) Display() string {
	if c.Branch == "" {
		return c.CompanyName
	}
	return c.CompanyName + " - " + c.Branch
}

type ProductRecord struct {
	Code        string
	Name        string
	BaseUOM     string
	AllowedUOMs []string
}

// ParsedOrderItem is one staged row of a pasted order. ProductCode == ""
// means the line is unresolved; it stays visible until a human resolves or
// removes it.
type ParsedOrderItem struct {
	RawLine     string
	Quantity    float64
	UOM         string
	Price       float64
	ProductCode string
	ProductName string
	Note        string
	Score       float64
}

func (i ParsedOrderItem) Resolved() bool {
	return i.ProductCode != ""
}

// ParsedPriceItem is one staged row of a supplier price list. Rows only
// exist when a product match and a positive price were both found.
type ParsedPriceItem struct {
	RawLine     string
	ProductCode string
	ProductName string
	UOM         string
	Price       float64
}

type OrderRow struct {
	ID           int64
	CustomerID   int64
	DeliveryDate *string
	CreatedAt    string
}

type OrderItemRow struct {
	ID          int64
	OrderID     int64
	RawLine     string
	ProductCode string
	Quantity    float64
	UOM         string
	Price       float64
}

type PriceRecordRow struct {
	ID          int64
	Supplier    string
	ProductCode string
	ProductName string
	UOM         string
	Price       float64
	CreatedAt   string
}

type IntakeKind string

const (
	IntakePriceList IntakeKind = "pricelist"
	IntakeOrder     IntakeKind = "order"
	IntakeUnknown   IntakeKind = "unknown"
)

type IntakeRow struct {
	ID         int64
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// ReviewExportRow is one row of the order-review spreadsheet handed to staff
// before commit.
type ReviewExportRow struct {
	LineNo      int
	RawLine     string
	Quantity    float64
	UOM         string
	Price       float64
	ProductCode string
	ProductName string
	Score       float64
	Status      string
	Note        string
}
