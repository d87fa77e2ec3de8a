package stanza

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/jimyag/poolagent/pkg/apierror"
)

const (
	// NSStorage 存储池请求使用的 query 命名空间
	NSStorage = "archipel:storage"
	// NSGenericError 错误文本使用的命名空间
	NSGenericError = "archipel:error:generic"
)

// IQ 类型
const (
	TypeGet    = "get"
	TypeSet    = "set"
	TypeResult = "result"
	TypeError  = "error"
)

// IQ 是一个 info/query stanza
type IQ struct {
	XMLName xml.Name `xml:"iq"`
	Type    string   `xml:"type,attr"`
	ID      string   `xml:"id,attr,omitempty"`
	From    string   `xml:"from,attr,omitempty"`
	To      string   `xml:"to,attr,omitempty"`
	Query   *Query   `xml:"query,omitempty"`
	Error   *Error   `xml:"error,omitempty"`
}

// Query 是 IQ 的负载容器
// 解码时 Inner 保存原始子元素，编码时 Inner 原样输出
type Query struct {
	XMLName  xml.Name
	Archipel *Archipel `xml:"archipel,omitempty"`
	Inner    []byte    `xml:",innerxml"`
}

// Archipel 携带请求动作和参数
type Archipel struct {
	XMLName    xml.Name `xml:"archipel"`
	Action     string   `xml:"action,attr"`
	Identifier string   `xml:"identifier,attr,omitempty"`
	Build      string   `xml:"build,attr,omitempty"`
	Delete     string   `xml:"delete,attr,omitempty"`
	Autostart  string   `xml:"autostart,attr,omitempty"`
	Inner      []byte   `xml:",innerxml"`
}

// Error 是错误响应中的 error 元素
type Error struct {
	XMLName xml.Name   `xml:"error"`
	Type    string     `xml:"type,attr"`
	Code    int        `xml:"code,attr"`
	Kind    string     `xml:"kind,attr,omitempty"`
	Text    *ErrorText `xml:"text,omitempty"`
}

type ErrorText struct {
	XMLName xml.Name `xml:"archipel:error:generic text"`
	Value   string   `xml:",chardata"`
}

// NewQuery 创建 archipel:storage 命名空间的 query
func NewQuery() *Query {
	return &Query{XMLName: xml.Name{Space: NSStorage, Local: "query"}}
}

// NewRequest 构造一个存储池请求
func NewRequest(id, to string, archipel *Archipel) *IQ {
	iqType := TypeSet
	if archipel != nil && isReadOnlyAction(archipel.Action) {
		iqType = TypeGet
	}
	q := NewQuery()
	q.Archipel = archipel
	return &IQ{
		Type:  iqType,
		ID:    id,
		To:    to,
		Query: q,
	}
}

func isReadOnlyAction(action string) bool {
	switch action {
	case "poollist", "poolinfo", "poolvolumes", "pooldescription":
		return true
	}
	return false
}

// Unmarshal 解析 IQ stanza
func Unmarshal(data []byte) (*IQ, error) {
	var iq IQ
	if err := xml.Unmarshal(data, &iq); err != nil {
		return nil, apierror.NewErrorWithRaw(0, apierror.KindInvalidRequest, "malformed iq stanza", err)
	}
	return &iq, nil
}

// Marshal 序列化 IQ stanza
func Marshal(iq *IQ) ([]byte, error) {
	data, err := xml.Marshal(iq)
	if err != nil {
		return nil, fmt.Errorf("marshal iq: %w", err)
	}
	return data, nil
}

// Command 返回请求中的 archipel 元素
// query 缺失、命名空间不是 archipel:storage 或缺少 archipel 元素时返回 InvalidRequest
func (iq *IQ) Command() (*Archipel, error) {
	if iq.Type != TypeGet && iq.Type != TypeSet {
		return nil, apierror.NewError(0, apierror.KindInvalidRequest, fmt.Sprintf("unexpected iq type %q", iq.Type))
	}
	if iq.Query == nil {
		return nil, apierror.NewError(0, apierror.KindInvalidRequest, "iq has no query element")
	}
	if iq.Query.XMLName.Space != NSStorage {
		return nil, apierror.NewError(0, apierror.KindInvalidRequest,
			fmt.Sprintf("unsupported query namespace %q", iq.Query.XMLName.Space))
	}
	if iq.Query.Archipel == nil {
		return nil, apierror.NewError(0, apierror.KindInvalidRequest, "query has no archipel element")
	}
	return iq.Query.Archipel, nil
}

// Result 构造成功响应，payload 中的每一项依次编码为 query 的子元素
func (iq *IQ) Result(payload ...any) (*IQ, error) {
	var buf bytes.Buffer
	for _, p := range payload {
		if raw, ok := p.(RawXML); ok {
			buf.WriteString(string(raw))
			continue
		}
		data, err := xml.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal result payload: %w", err)
		}
		buf.Write(data)
	}

	q := NewQuery()
	if buf.Len() > 0 {
		q.Inner = buf.Bytes()
	}
	return &IQ{
		Type:  TypeResult,
		ID:    iq.ID,
		From:  iq.To,
		To:    iq.From,
		Query: q,
	}, nil
}

// ErrorReply 构造错误响应，原样附带请求的 query
func (iq *IQ) ErrorReply(apiErr *apierror.Error) *IQ {
	q := NewQuery()
	if iq.Query != nil {
		q.Inner = iq.Query.Inner
	}
	return &IQ{
		Type:  TypeError,
		ID:    iq.ID,
		From:  iq.To,
		To:    iq.From,
		Query: q,
		Error: &Error{
			Type: "cancel",
			Code: apiErr.Code,
			Kind: string(apiErr.Kind),
			Text: &ErrorText{Value: apiErr.Message},
		},
	}
}

// Err 把错误响应转换为 *apierror.Error，非错误响应返回 nil
func (iq *IQ) Err() error {
	if iq.Type != TypeError {
		return nil
	}
	if iq.Error == nil {
		return apierror.NewError(apierror.CodeGeneric, apierror.KindBackendError, "error reply without error element")
	}
	msg := ""
	if iq.Error.Text != nil {
		msg = iq.Error.Text.Value
	}
	kind := apierror.Kind(iq.Error.Kind)
	if kind == "" {
		kind = apierror.KindBackendError
	}
	return apierror.NewError(iq.Error.Code, kind, msg)
}

// DecodePayload 把 query 的子元素解码到 v
// v 的字段按子元素名称打标签，例如 `xml:"pool"`
func (iq *IQ) DecodePayload(v any) error {
	if iq.Query == nil {
		return nil
	}
	doc := make([]byte, 0, len(iq.Query.Inner)+len("<payload></payload>"))
	doc = append(doc, "<payload>"...)
	doc = append(doc, iq.Query.Inner...)
	doc = append(doc, "</payload>"...)
	if err := xml.Unmarshal(doc, v); err != nil {
		return fmt.Errorf("decode query payload: %w", err)
	}
	return nil
}
