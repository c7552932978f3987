package scorm

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
)

// PackageInfo summarizes a SCORM zip read back from bytes.
type PackageInfo struct {
	Identifier string
	Title      string
	EntryPoint string
	ScormType  string
	Entries    []string
	// Missing lists files referenced by the manifest or by page links that
	// are not in the archive.
	Missing []string
}

// read model; prefixed attributes decode by local name
type manifestDoc struct {
	XMLName       xml.Name `xml:"manifest"`
	Identifier    string   `xml:"identifier,attr"`
	Organizations struct {
		Organization []struct {
			Title string `xml:"title"`
		} `xml:"organization"`
	} `xml:"organizations"`
	Resources []struct {
		Href      string `xml:"href,attr"`
		ScormType string `xml:"scormtype,attr"`
		Files     []struct {
			Href string `xml:"href,attr"`
		} `xml:"file"`
	} `xml:"resources>resource"`
}

var hrefRe = regexp.MustCompile(`href="([^"#?:]+)"`)

// Inspect opens a package, parses its manifest and checks that the entry
// point, manifest files and local page links all resolve inside the zip.
func Inspect(data []byte) (PackageInfo, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return PackageInfo{}, fmt.Errorf("open package: %w", err)
	}
	files := map[string]*zip.File{}
	var info PackageInfo
	for _, f := range zr.File {
		files[f.Name] = f
		info.Entries = append(info.Entries, f.Name)
	}
	mf, ok := files[ManifestFile]
	if !ok {
		return info, fmt.Errorf("package has no %s", ManifestFile)
	}
	raw, err := readEntry(mf)
	if err != nil {
		return info, err
	}
	var doc manifestDoc
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return info, fmt.Errorf("parse manifest: %w", err)
	}
	if len(doc.Resources) == 0 {
		return info, fmt.Errorf("manifest declares no resource")
	}
	info.Identifier = doc.Identifier
	if orgs := doc.Organizations.Organization; len(orgs) > 0 {
		info.Title = orgs[0].Title
	}
	res := doc.Resources[0]
	info.EntryPoint, info.ScormType = res.Href, res.ScormType

	missing := map[string]bool{}
	check := func(name string) {
		if _, ok := files[name]; !ok {
			missing[name] = true
		}
	}
	check(res.Href)
	for _, f := range res.Files {
		check(f.Href)
	}
	for name, f := range files {
		if !isPage(name) {
			continue
		}
		body, err := readEntry(f)
		if err != nil {
			return info, err
		}
		for _, m := range hrefRe.FindAllSubmatch(body, -1) {
			check(string(m[1]))
		}
	}
	for name := range missing {
		info.Missing = append(info.Missing, name)
	}
	sort.Strings(info.Missing)
	return info, nil
}

func isPage(name string) bool {
	return len(name) > 5 && name[len(name)-5:] == ".html"
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
