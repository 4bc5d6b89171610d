package model

// Contact 名片联系人记录，字段均为字符串，缺省为空串
type Contact struct {
	Organization string `json:"organization"`
	Name         string `json:"name"`
	Designation  string `json:"designation"`
	Contact      string `json:"contact"`
	Email        string `json:"email"`
	Website      string `json:"website"`
	Address      string `json:"address"`
	Remarks      string `json:"remarks"`
}

// ContentFields 大模型需要提取的字段（不含 remarks）
var ContentFields = []string{
	"organization",
	"name",
	"designation",
	"contact",
	"email",
	"website",
	"address",
}

// Row 生成写入表格的一行：[序号, organization, name, designation, contact, email, website, address, remarks]
func (c Contact) Row(seq int) []any {
	return []any{
		seq,
		c.Organization,
		c.Name,
		c.Designation,
		c.Contact,
		c.Email,
		c.Website,
		c.Address,
		c.Remarks,
	}
}

// SetField 按 JSON 字段名赋值，未知字段忽略
func (c *Contact) SetField(key, value string) {
	switch key {
	case "organization":
		c.Organization = value
	case "name":
		c.Name = value
	case "designation":
		c.Designation = value
	case "contact":
		c.Contact = value
	case "email":
		c.Email = value
	case "website":
		c.Website = value
	case "address":
		c.Address = value
	case "remarks":
		c.Remarks = value
	}
}

// SaveContactResponse 保存联系人成功响应
type SaveContactResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
