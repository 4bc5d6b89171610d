package service

import "strings"

const defaultMIMEType = "application/octet-stream"

// DetectMIMEType 仅按文件扩展名判断图片类型（大小写不敏感），未知扩展名返回通用二进制类型
func DetectMIMEType(filename string) string {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return "image/jpeg"
	}
	return defaultMIMEType
}
