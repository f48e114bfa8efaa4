package models

// Organisation represents an organisational unit with contact details.
// Organisations form a forest via the embedded TreeNode.
type Organisation struct {
	Base
	TreeNode
	Name        string `json:"name" gorm:"not null;size:255"`
	Description string `json:"description"`
	Code        string `json:"code" gorm:"size:50;index"`
	Email       string `json:"email" gorm:"size:255"`
	Phone       string `json:"phone" gorm:"size:50"`
	Address     string `json:"address"`
	Website     string `json:"website" gorm:"size:255"`
	IsActive    bool   `json:"is_active" gorm:"index"`
	Metadata    JSONB  `json:"metadata" gorm:"type:jsonb;default:'{}'"`

	// Relations
	Parent   *Organisation  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []Organisation `json:"children,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Organisation
func (Organisation) TableName() string {
	return "organisations"
}

// DisplayName returns the record name.
func (o *Organisation) DisplayName() string { return o.Name }

// IndentedName returns the name prefixed with one em dash per tree level.
func (o *Organisation) IndentedName() string {
	return indentedName(o.Depth, o.Name)
}
