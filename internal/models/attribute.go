package models

// Attribute represents a typed key/value entry. The value is stored as text
// regardless of DataType; presentation layers parse and format it via the
// DataType helpers. Attributes form a forest via the embedded TreeNode.
type Attribute struct {
	Base
	TreeNode
	Name        string   `json:"name" gorm:"not null;size:255"`
	Value       string   `json:"value" gorm:"type:text"`
	DataType    DataType `json:"data_type" gorm:"size:50;default:'string';index"`
	Description string   `json:"description"`
	IsActive    bool     `json:"is_active" gorm:"index"`
	Metadata    JSONB    `json:"metadata" gorm:"type:jsonb;default:'{}'"`

	// Relations
	Parent   *Attribute  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []Attribute `json:"children,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Attribute
func (Attribute) TableName() string {
	return "attributes"
}

// DisplayName returns the record name.
func (a *Attribute) DisplayName() string { return a.Name }

// IndentedName returns the name prefixed with one em dash per tree level.
func (a *Attribute) IndentedName() string {
	return indentedName(a.Depth, a.Name)
}
