package models

// Application represents an application entity with descriptive attributes,
// extensible properties and associations to attributes and organisations.
// Applications form a forest via the embedded TreeNode.
type Application struct {
	Base
	TreeNode
	Name        string `json:"name" gorm:"not null;size:255"`
	Description string `json:"description"`
	Properties  JSONB  `json:"properties" gorm:"type:jsonb;default:'{}'"`

	// Relations
	Parent        *Application   `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children      []Application  `json:"children,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Attributes    []Attribute    `json:"attributes,omitempty" gorm:"many2many:application_attributes;"`
	Organisations []Organisation `json:"organisations,omitempty" gorm:"many2many:application_organisations;"`
}

// TableName returns the table name for Application
func (Application) TableName() string {
	return "applications"
}

// DisplayName returns the record name.
func (a *Application) DisplayName() string { return a.Name }

// IndentedName returns the name prefixed with one em dash per tree level,
// matching the admin list display.
func (a *Application) IndentedName() string {
	return indentedName(a.Depth, a.Name)
}

func indentedName(depth int, name string) string {
	if depth == 0 {
		return name
	}
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "—"
	}
	return indent + " " + name
}
