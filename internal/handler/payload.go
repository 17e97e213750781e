package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitecontent/internal/service"
)

const (
	payloadContextKey = "__payload"

	msgMalformedBody   = "Malformed request body"
	msgBodyTooLarge    = "Request body too large"
	msgUnsupportedType = "Unsupported media type"
	msgNotAFile        = "The submitted data was not a file. Check the encoding type on the form."
)

// payload 是 JSON 或表单请求体解析后的统一字段集合。
// JSON 值保留原始类型，表单值均为字符串。
type payload struct {
	values map[string]interface{}
	files  map[string]*multipart.FileHeader
}

// BindPayload 解析请求体（JSON、urlencoded 或 multipart）并放入上下文，
// 格式错误时直接以 400 结束请求。
func (a *API) BindPayload() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.maxUploadBytes)
		}

		p, status, err := parsePayload(c)
		if err != nil {
			message := msgMalformedBody
			switch status {
			case http.StatusRequestEntityTooLarge:
				message = msgBodyTooLarge
			case http.StatusUnsupportedMediaType:
				message = msgUnsupportedType
			}
			abortWithError(c, status, message)
			return
		}

		c.Set(payloadContextKey, p)
		c.Next()
	}
}

func payloadFrom(c *gin.Context) *payload {
	if value, ok := c.Get(payloadContextKey); ok {
		if p, ok := value.(*payload); ok {
			return p
		}
	}
	return &payload{values: map[string]interface{}{}, files: map[string]*multipart.FileHeader{}}
}

func parsePayload(c *gin.Context) (*payload, int, error) {
	p := &payload{values: map[string]interface{}{}, files: map[string]*multipart.FileHeader{}}

	switch c.ContentType() {
	case gin.MIMEJSON:
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, bodyErrorStatus(err), err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return p, 0, nil
		}
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&p.values); err != nil {
			return nil, http.StatusBadRequest, err
		}
		if p.values == nil {
			return nil, http.StatusBadRequest, errors.New("json body must be an object")
		}
	case gin.MIMEMultipartPOSTForm:
		form, err := c.MultipartForm()
		if err != nil {
			return nil, bodyErrorStatus(err), err
		}
		for key, values := range form.Value {
			if len(values) > 0 {
				p.values[key] = values[0]
			}
		}
		for key, files := range form.File {
			if len(files) > 0 {
				p.files[key] = files[0]
			}
		}
	case gin.MIMEPOSTForm, "":
		if err := c.Request.ParseForm(); err != nil {
			return nil, bodyErrorStatus(err), err
		}
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				p.values[key] = values[0]
			}
		}
	default:
		return nil, http.StatusUnsupportedMediaType, fmt.Errorf("unsupported content type %q", c.ContentType())
	}

	return p, 0, nil
}

func bodyErrorStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// text 返回文本字段；未提交返回 nil。数字与布尔值按文本接受，JSON null 记为字段错误。
func (p *payload) text(key string, errs *service.ValidationError) *string {
	raw, ok := p.values[key]
	if !ok {
		return nil
	}
	var value string
	switch v := raw.(type) {
	case nil:
		errs.Add(key, service.MsgNull)
		return nil
	case string:
		value = v
	case json.Number:
		value = v.String()
	case bool:
		value = strconv.FormatBool(v)
	default:
		errs.Add(key, service.MsgInvalidString)
		return nil
	}
	return &value
}

// str 只接受字符串值，其他类型一律视为空串。用于凭据与令牌这类不做类型转换的字段。
func (p *payload) str(key string) string {
	if value, ok := p.values[key].(string); ok {
		return value
	}
	return ""
}

// integer 将字段强制转换为整数，失败时记录字段错误。
func (p *payload) integer(key string, errs *service.ValidationError) *int {
	raw, ok := p.values[key]
	if !ok {
		return nil
	}

	var parsed int64
	var err error
	switch v := raw.(type) {
	case json.Number:
		parsed, err = v.Int64()
		if err != nil {
			parsed, err = integralFloat(v.String())
		}
	case string:
		parsed, err = strconv.ParseInt(strings.TrimSpace(v), 10, 32)
		if err != nil {
			parsed, err = integralFloat(strings.TrimSpace(v))
		}
	default:
		err = errors.New("not an integer")
	}
	if err != nil || parsed > math.MaxInt32 || parsed < math.MinInt32 {
		errs.Add(key, service.MsgInvalidInt)
		return nil
	}

	value := int(parsed)
	return &value
}

// integralFloat 接受 "5.0" 这类没有小数部分的写法。
func integralFloat(raw string) (int64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.New("not an integer")
	}
	return int64(f), nil
}

var (
	trueValues  = map[string]bool{"true": true, "t": true, "yes": true, "y": true, "on": true, "1": true}
	falseValues = map[string]bool{"false": true, "f": true, "no": true, "n": true, "off": true, "0": true}
)

// boolean 将字段强制转换为布尔值，失败时记录字段错误。
func (p *payload) boolean(key string, errs *service.ValidationError) *bool {
	raw, ok := p.values[key]
	if !ok {
		return nil
	}

	var token string
	switch v := raw.(type) {
	case bool:
		return &v
	case json.Number:
		token = v.String()
	case string:
		token = strings.ToLower(strings.TrimSpace(v))
	}

	switch {
	case trueValues[token]:
		value := true
		return &value
	case falseValues[token]:
		value := false
		return &value
	default:
		errs.Add(key, service.MsgInvalidBool)
		return nil
	}
}

// file 返回上传文件。提交了同名的非空文本字段视为编码错误。
func (p *payload) file(key string, errs *service.ValidationError) *multipart.FileHeader {
	if fh, ok := p.files[key]; ok {
		return fh
	}
	switch v := p.values[key].(type) {
	case nil:
	case string:
		if strings.TrimSpace(v) != "" {
			errs.Add(key, msgNotAFile)
		}
	default:
		errs.Add(key, msgNotAFile)
	}
	return nil
}
