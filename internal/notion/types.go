package notion

// RichText is one run of a rich-text array. Only the plain text is consumed.
type RichText struct {
	Type      string  `json:"type"`
	PlainText string  `json:"plain_text"`
	Href      *string `json:"href"`
}

// Property is a database page property. Only the value matching Type is set.
type Property struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Checkbox *bool      `json:"checkbox,omitempty"`
}

// Page is a database query result. Partial page objects carry only Object and ID,
// in which case Properties is nil.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time,omitempty"`
	LastEditedTime string              `json:"last_edited_time,omitempty"`
	Archived       bool                `json:"archived,omitempty"`
	Properties     map[string]Property `json:"properties,omitempty"`
}

// PageList is the response of a database query.
type PageList struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// TextBlock is the payload shared by paragraph, heading and quote blocks.
type TextBlock struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

// CodeBlock is the payload of a code block.
type CodeBlock struct {
	RichText []RichText `json:"rich_text"`
	Language *string    `json:"language"`
}

// Block is one child block of a page. Payloads of block types this package
// does not model are left out when decoding.
type Block struct {
	Object      string     `json:"object"`
	ID          string     `json:"id"`
	Type        string     `json:"type,omitempty"`
	HasChildren bool       `json:"has_children,omitempty"`
	Paragraph   *TextBlock `json:"paragraph,omitempty"`
	Heading2    *TextBlock `json:"heading_2,omitempty"`
	Heading3    *TextBlock `json:"heading_3,omitempty"`
	Quote       *TextBlock `json:"quote,omitempty"`
	Code        *CodeBlock `json:"code,omitempty"`
}

// BlockList is the response of a block children listing.
type BlockList struct {
	Object     string  `json:"object"`
	Results    []Block `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// CheckboxCondition filters on a checkbox property.
type CheckboxCondition struct {
	Equals bool `json:"equals"`
}

// TextCondition filters on a rich_text property.
type TextCondition struct {
	Equals string `json:"equals"`
}

// Filter is a database query filter. Either And or a single property
// condition is set.
type Filter struct {
	And      []Filter           `json:"and,omitempty"`
	Property string             `json:"property,omitempty"`
	Checkbox *CheckboxCondition `json:"checkbox,omitempty"`
	RichText *TextCondition     `json:"rich_text,omitempty"`
}

// Sort orders query results by a property or a page timestamp.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// DatabaseQuery is the body of a database query request.
type DatabaseQuery struct {
	Filter   *Filter `json:"filter,omitempty"`
	Sorts    []Sort  `json:"sorts,omitempty"`
	PageSize int     `json:"page_size,omitempty"`
}
