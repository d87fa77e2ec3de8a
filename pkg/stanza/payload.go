package stanza

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/jimyag/poolagent/pkg/apierror"
)

// undeclaredNamespace 是部分 XMPP 客户端解析器给无命名空间片段注入的属性
const undeclaredNamespace = `xmlns="http://www.gajim.org/xmlns/undeclared"`

// RawXML 原样写入 query 的 XML 片段
type RawXML string

// PoolItem poollist 响应中的一项
type PoolItem struct {
	XMLName xml.Name `xml:"pool"`
	Name    string   `xml:",chardata"`
}

// Info poolinfo 响应中的存储池信息
// 属性名沿用现有客户端的拼写（persistant）
type Info struct {
	XMLName     xml.Name `xml:"info"`
	State       uint8    `xml:"state,attr"`
	StateName   string   `xml:"statename,attr"`
	Capacity    uint64   `xml:"capacity,attr"`
	Allocation  uint64   `xml:"allocation,attr"`
	Available   uint64   `xml:"available,attr"`
	Persistent  bool     `xml:"persistant,attr"`
	Autostart   bool     `xml:"autostart,attr"`
	VolumeCount uint32   `xml:"volumecount,attr"`
}

// Volumes 卷名称列表
type Volumes struct {
	XMLName xml.Name `xml:"volumes"`
	Volumes []Volume `xml:"volume"`
}

type Volume struct {
	Name string `xml:"name,attr"`
}

// NewVolumes 由卷名称构造 Volumes
func NewVolumes(names []string) *Volumes {
	vols := make([]Volume, 0, len(names))
	for _, name := range names {
		vols = append(vols, Volume{Name: name})
	}
	return &Volumes{Volumes: vols}
}

// Names 返回卷名称
func (v *Volumes) Names() []string {
	if v == nil {
		return nil
	}
	names := make([]string, 0, len(v.Volumes))
	for _, vol := range v.Volumes {
		names = append(names, vol.Name)
	}
	return names
}

// DefinedPool pooldefine 成功后返回的存储池引用
type DefinedPool struct {
	XMLName xml.Name `xml:"pool"`
	Name    string   `xml:"name,attr"`
	UUID    string   `xml:"uuid,attr"`
}

// Warning 操作完成但有部分步骤失败时附带的警告
type Warning struct {
	XMLName xml.Name `xml:"warning"`
	Text    string   `xml:",chardata"`
}

// ParseFlag 把 "true"/"false"（不区分大小写）解析为 bool
// 属性缺失时，required 为 false 则返回 false，否则返回 InvalidRequest
func ParseFlag(name, value string, required bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "":
		if !required {
			return false, nil
		}
		return false, apierror.NewError(0, apierror.KindInvalidRequest, fmt.Sprintf("missing attribute %s", name))
	default:
		return false, apierror.NewError(0, apierror.KindInvalidRequest,
			fmt.Sprintf("attribute %s must be true or false, got %q", name, value))
	}
}

// Descriptor 返回 archipel 元素内携带的存储池 XML 定义
func (a *Archipel) Descriptor() (string, error) {
	doc := strings.TrimSpace(string(a.Inner))
	if doc == "" {
		return "", apierror.NewError(0, apierror.KindInvalidRequest, "pool descriptor is missing")
	}
	return StripUndeclaredNamespace(doc), nil
}

// StripUndeclaredNamespace 去掉客户端解析器注入的 undeclared 命名空间声明
func StripUndeclaredNamespace(doc string) string {
	doc = strings.ReplaceAll(doc, " "+undeclaredNamespace, "")
	return strings.ReplaceAll(doc, undeclaredNamespace, "")
}
