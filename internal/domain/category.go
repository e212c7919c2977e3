package domain

type Category struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}
