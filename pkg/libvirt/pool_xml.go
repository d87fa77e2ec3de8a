package libvirt

import (
	"encoding/xml"
	"fmt"
)

// StoragePoolXML 是 libvirt 存储池定义的 XML 结构，只包含常用字段
type StoragePoolXML struct {
	XMLName xml.Name          `xml:"pool"`
	Type    string            `xml:"type,attr"`
	Name    string            `xml:"name"`
	UUID    string            `xml:"uuid,omitempty"`
	Source  StoragePoolSource `xml:"source"`
	Target  StoragePoolTarget `xml:"target"`
}

// StoragePoolSource 存储池来源
type StoragePoolSource struct {
	Host   []StoragePoolSourceHost `xml:"host"`
	Dir    *StoragePoolSourcePath  `xml:"dir"`
	Device []StoragePoolSourcePath `xml:"device"`
	Name   string                  `xml:"name,omitempty"`
}

// StoragePoolSourceHost 网络存储的主机
type StoragePoolSourceHost struct {
	Name string `xml:"name,attr"`
	Port string `xml:"port,attr,omitempty"`
}

// StoragePoolSourcePath 目录或设备路径
type StoragePoolSourcePath struct {
	Path string `xml:"path,attr"`
}

// StoragePoolTarget 存储池在主机上的挂载点
type StoragePoolTarget struct {
	Path string `xml:"path"`
}

// ParseStoragePoolXML 解析存储池定义，要求根元素为 pool 且带有 type 和 name
func ParseStoragePoolXML(xmlData string) (*StoragePoolXML, error) {
	var pool StoragePoolXML
	if err := xml.Unmarshal([]byte(xmlData), &pool); err != nil {
		return nil, fmt.Errorf("parse storage pool xml: %w", err)
	}
	if pool.Type == "" {
		return nil, fmt.Errorf("storage pool xml has no type attribute")
	}
	if pool.Name == "" {
		return nil, fmt.Errorf("storage pool xml has no name")
	}
	return &pool, nil
}
