package handler

import (
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// studentIDMaxLen 与 student_records.student_id 列宽一致
const studentIDMaxLen = 128

var registerOnce sync.Once

// RegisterValidators 向 gin 的 validator 注册自定义校验 tag
//
//	studentid: 去除首尾空白后非空、不超过 128 字节、不含控制字符
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		err = v.RegisterValidation("studentid", validateStudentID)
	})
	return err
}

func validateStudentID(fl validator.FieldLevel) bool {
	id := strings.TrimSpace(fl.Field().String())
	if id == "" || len(id) > studentIDMaxLen {
		return false
	}
	return strings.IndexFunc(id, unicode.IsControl) < 0
}
