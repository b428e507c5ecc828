package models

// The catalog tables are owned by the host CMS. These are read-only
// projections of the columns the feedback engine joins against.

// Organization is the owning group of a dataset
type Organization struct {
	ID    string `json:"id" gorm:"type:text;primaryKey"`
	Name  string `json:"name" gorm:"type:text;uniqueIndex"`
	Title string `json:"title" gorm:"type:text"`
}

// Dataset is a catalog package that groups resources
type Dataset struct {
	ID       string `json:"id" gorm:"type:text;primaryKey"`
	Name     string `json:"name" gorm:"type:text;index"`
	Title    string `json:"title" gorm:"type:text"`
	OwnerOrg string `json:"owner_org" gorm:"type:text;index"`
	State    string `json:"state" gorm:"type:text;default:active"`
}

// Resource is a downloadable artifact within a dataset
type Resource struct {
	ID        string `json:"id" gorm:"type:text;primaryKey"`
	DatasetID string `json:"dataset_id" gorm:"type:text;index"`
	Name      string `json:"name" gorm:"type:text"`
	State     string `json:"state" gorm:"type:text;default:active"`
}

// ResourceContext carries a resource together with its resolved dataset and
// owning organization, for authorization scoping and display labels.
type ResourceContext struct {
	Resource     Resource     `json:"resource"`
	Dataset      Dataset      `json:"dataset"`
	Organization Organization `json:"organization"`
}
