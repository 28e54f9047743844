package gworkspace

import (
	"bytes"
	"context"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

const fileFields = "id, name, mimeType, webViewLink, parents"

// FileInfo describes a Drive file.
type FileInfo struct {
	ID       string
	Name     string
	MimeType string
	URL      string
	Parents  []string
}

// Copy duplicates srcID into folderID under name.
func (c *Client) Copy(ctx context.Context, srcID, name, folderID string) (model.File, error) {
	f, err := c.drive.Files.Copy(srcID, &drive.File{
		Name:    name,
		Parents: []string{folderID},
	}).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return model.File{}, classify("copy file", srcID, err)
	}
	return toFile(f), nil
}

// Save uploads data as a PDF into folder.
func (c *Client) Save(ctx context.Context, folder, name string, data []byte) (model.File, error) {
	f, err := c.drive.Files.Create(&drive.File{
		Name:     name,
		Parents:  []string{folder},
		MimeType: "application/pdf",
	}).
		Media(bytes.NewReader(data), googleapi.ContentType("application/pdf")).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return model.File{}, classify("upload file", name, err)
	}
	return toFile(f), nil
}

// Move re-parents fileID into folderID, removing it from its current folders.
func (c *Client) Move(ctx context.Context, fileID, folderID string) error {
	cur, err := c.drive.Files.Get(fileID).
		Fields("parents").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return classify("move file", fileID, err)
	}
	_, err = c.drive.Files.Update(fileID, &drive.File{}).
		AddParents(folderID).
		RemoveParents(strings.Join(cur.Parents, ",")).
		Fields("id, parents").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	return classify("move file", fileID, err)
}

// ExportRaw exports the whole document as PDF with Drive's default layout.
func (c *Client) ExportRaw(ctx context.Context, docID string) ([]byte, error) {
	resp, err := c.drive.Files.Export(docID, "application/pdf").Context(ctx).Download()
	if err != nil {
		return nil, classify("export file", docID, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify("export file", docID, err)
	}
	return data, nil
}

// Info returns metadata of a file; used to check access.
func (c *Client) Info(ctx context.Context, fileID string) (FileInfo, error) {
	f, err := c.drive.Files.Get(fileID).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return FileInfo{}, classify("get file", fileID, err)
	}
	return FileInfo{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		URL:      fileURL(f),
		Parents:  f.Parents,
	}, nil
}

func toFile(f *drive.File) model.File {
	return model.File{ID: f.Id, Name: f.Name, URL: fileURL(f)}
}

func fileURL(f *drive.File) string {
	if f.WebViewLink != "" {
		return f.WebViewLink
	}
	return "https://drive.google.com/file/d/" + f.Id + "/view"
}
