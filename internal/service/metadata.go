package service

import (
	"encoding/xml"
	"time"

	"sampleshare/internal/model"
)

// Формат документа синхронизации каталогов. Имена тегов и атрибутов — часть
// протокола обмена с партнёрскими системами, менять нельзя.
const metadataTimestampFormat = "2006-01-02T15:04:05.000000"

type metadataFile struct {
	ID   string `xml:"id,attr"`
	MD5  string `xml:"md5"`
	Size int64  `xml:"size"`
}

type metadataObjects struct {
	Files []metadataFile `xml:"file"`
}

type metadataDoc struct {
	XMLName        xml.Name        `xml:"malwareMetaData"`
	XMLNS          string          `xml:"xmlns,attr"`
	XMLNSXSI       string          `xml:"xmlns:xsi,attr"`
	SchemaLocation string          `xml:"xsi:schemaLocation,attr"`
	Version        string          `xml:"version,attr"`
	ID             string          `xml:"id,attr"`
	Company        string          `xml:"company"`
	Author         string          `xml:"author"`
	Comment        string          `xml:"comment"`
	Timestamp      string          `xml:"timestamp"`
	Objects        metadataObjects `xml:"objects"`
}

// renderMetadata сериализует документ malwareMetaData для записей,
// отсутствующих в локальном хранилище.
func renderMetadata(rows []model.SampleRow) ([]byte, error) {
	doc := metadataDoc{
		XMLNS:          "http://xml/metadataSharing.xsd",
		XMLNSXSI:       "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: "http://xml/metadataSharing.xsd file:metadataSharing.xsd",
		Version:        "1.200000",
		ID:             "10000",
		Company:        "Virex",
		Author:         "Virex",
		Comment:        "Virex Norman Sample Share",
		Timestamp:      time.Now().UTC().Format(metadataTimestampFormat),
	}
	for _, row := range rows {
		doc.Objects.Files = append(doc.Objects.Files, metadataFile{
			ID:   row.MD5,
			MD5:  row.MD5,
			Size: row.FileSize,
		})
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
