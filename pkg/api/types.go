package api

// InvestmentType запись реестра типов
type InvestmentType struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	IsDefault bool   `json:"is_default"`
	IsActive  bool   `json:"is_active"`
}

// TypeListResponse ответ GET /types
type TypeListResponse struct {
	Types []InvestmentType `json:"types"`
}

// CreateTypeRequest тело POST /types
type CreateTypeRequest struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"` // пусто или неизвестно: Custom
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
}

// UpdateTypeRequest тело PATCH /types/{key}
type UpdateTypeRequest struct {
	IsActive *bool `json:"is_active"`
}
