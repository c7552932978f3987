package scorm

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/mind-engage/mindengage-scorm/internal/course"
)

const (
	nsIMSCP     = "http://www.imsproject.org/xsd/imscp_rootv1p1p2"
	nsADLCP     = "http://www.adlnet.org/xsd/adlcp_rootv1p2"
	nsXSI       = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocs  = nsIMSCP + " imscp_rootv1p1p2.xsd " + nsADLCP + " adlcp_rootv1p2.xsd"
	orgID       = "ORG1"
	itemID      = "ITEM1"
	resourceID  = "RES1"
	itemSuffix  = " — Module"
	scormSchema = "ADL SCORM"
)

// --- XML model for the SCORM 1.2 content package manifest ---
type manifest struct {
	XMLName        xml.Name        `xml:"manifest"`
	Identifier     string          `xml:"identifier,attr"`
	Version        string          `xml:"version,attr"`
	Xmlns          string          `xml:"xmlns,attr"`
	XmlnsADLCP     string          `xml:"xmlns:adlcp,attr"`
	XmlnsXSI       string          `xml:"xmlns:xsi,attr"`
	SchemaLocation string          `xml:"xsi:schemaLocation,attr"`
	Metadata       manifestMeta    `xml:"metadata"`
	Organizations  organizations   `xml:"organizations"`
	Resources      []manifestEntry `xml:"resources>resource"`
}

type manifestMeta struct {
	Schema        string `xml:"schema"`
	SchemaVersion string `xml:"schemaversion"`
}

type organizations struct {
	Default       string         `xml:"default,attr"`
	Organizations []organization `xml:"organization"`
}

type organization struct {
	Identifier string `xml:"identifier,attr"`
	Title      string `xml:"title"`
	Items      []item `xml:"item"`
}

type item struct {
	Identifier    string `xml:"identifier,attr"`
	IdentifierRef string `xml:"identifierref,attr"`
	IsVisible     bool   `xml:"isvisible,attr"`
	Title         string `xml:"title"`
}

type manifestEntry struct {
	Identifier string         `xml:"identifier,attr"`
	Type       string         `xml:"type,attr"`
	ScormType  string         `xml:"adlcp:scormtype,attr"`
	Href       string         `xml:"href,attr"`
	Files      []manifestFile `xml:"file"`
}

type manifestFile struct {
	Href string `xml:"href,attr"`
}

// ManifestID is the package identifier; it depends only on the course id.
func ManifestID(courseID int64) string {
	return fmt.Sprintf("MANIFEST_%d", courseID)
}

// RenderManifest describes the package as one organization with one item
// pointing at one SCO resource whose entry point is the index page.
func RenderManifest(c course.Course) ([]byte, error) {
	mf := manifest{
		Identifier:     ManifestID(c.ID),
		Version:        "1.2",
		Xmlns:          nsIMSCP,
		XmlnsADLCP:     nsADLCP,
		XmlnsXSI:       nsXSI,
		SchemaLocation: schemaLocs,
		Metadata:       manifestMeta{Schema: scormSchema, SchemaVersion: "1.2"},
		Organizations: organizations{
			Default: orgID,
			Organizations: []organization{{
				Identifier: orgID,
				Title:      c.Title,
				Items: []item{{
					Identifier:    itemID,
					IdentifierRef: resourceID,
					IsVisible:     true,
					Title:         c.Title + itemSuffix,
				}},
			}},
		},
		Resources: []manifestEntry{{
			Identifier: resourceID,
			Type:       "webcontent",
			ScormType:  "sco",
			Href:       IndexFile,
			Files:      []manifestFile{{Href: IndexFile}, {Href: ShimFile}},
		}},
	}
	b, err := xml.MarshalIndent(mf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(b)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
