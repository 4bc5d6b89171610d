package model

// CardImage 上传的名片图片
type CardImage struct {
	// Field 表单字段名：front | back
	Field    string
	Filename string
	MIMEType string
	Data     []byte
}
