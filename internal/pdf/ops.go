// Package pdf wraps pdfcpu operations behind the handful of transforms the
// API exposes. Every function works file-to-file within the session store.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// positions maps the API's position names onto pdfcpu anchor codes.
var positions = map[string]string{
	"bottom-right":  "br",
	"bottom-left":   "bl",
	"bottom-center": "bc",
	"top-right":     "tr",
	"top-left":      "tl",
	"top-center":    "tc",
}

// ValidPosition reports whether pos is an accepted page-number position.
func ValidPosition(pos string) bool {
	_, ok := positions[pos]
	return ok
}

// ValidQuality reports whether q is an accepted compression quality.
func ValidQuality(q string) bool {
	switch q {
	case "low", "medium", "high":
		return true
	}
	return false
}

func conf() *model.Configuration {
	c := model.NewDefaultConfiguration()
	c.ValidationMode = model.ValidationRelaxed
	return c
}

// Merge concatenates the input PDFs into out, in order.
func Merge(inputs []string, out string) error {
	if len(inputs) < 2 {
		return fmt.Errorf("merge needs at least 2 files, got %d", len(inputs))
	}
	if err := api.MergeCreateFile(inputs, out, false, conf()); err != nil {
		return fmt.Errorf("merging %d files: %w", len(inputs), err)
	}
	return nil
}

// SplitPages writes each page of in as page_N.pdf under outDir and returns
// the number of pages written.
func SplitPages(in, outDir string) (int, error) {
	count, err := api.PageCountFile(in)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	for p := 1; p <= count; p++ {
		out := filepath.Join(outDir, fmt.Sprintf("page_%d.pdf", p))
		if err := api.TrimFile(in, out, []string{fmt.Sprintf("%d", p)}, conf()); err != nil {
			return 0, fmt.Errorf("extracting page %d: %w", p, err)
		}
	}
	return count, nil
}

// Rotate turns the selected pages by angle degrees clockwise. A nil pages
// slice rotates the whole document. Angle must be a multiple of 90.
func Rotate(in, out string, angle int, pages []int) error {
	if angle%90 != 0 {
		return fmt.Errorf("rotation angle must be a multiple of 90, got %d", angle)
	}
	var selection []string
	if len(pages) > 0 {
		selection = pageStrings(pages)
	}
	if err := api.RotateFile(in, out, angle, selection, conf()); err != nil {
		return fmt.Errorf("rotating pages: %w", err)
	}
	return nil
}

// Compress rewrites in with optimized object streams. Quality steers how
// aggressively duplicate content is folded.
func Compress(in, out, quality string) error {
	if !ValidQuality(quality) {
		return fmt.Errorf("invalid quality %q (want low, medium or high)", quality)
	}
	c := conf()
	if quality != "high" {
		c.OptimizeDuplicateContentStreams = true
	}
	if err := api.OptimizeFile(in, out, c); err != nil {
		return fmt.Errorf("compressing: %w", err)
	}
	return nil
}

// Watermark stamps text diagonally across every page of in.
func Watermark(in, out, text string, opacity float64, angle int) error {
	if text == "" {
		return fmt.Errorf("empty watermark text")
	}
	if opacity <= 0 || opacity > 1 {
		return fmt.Errorf("opacity must be in (0, 1], got %g", opacity)
	}
	desc := fmt.Sprintf("font:Helvetica, scale:0.5 rel, rot:%d, op:%.2f, fillc:#7f7f7f", angle, opacity)
	wm, err := pdfcpu.ParseTextWatermarkDetails(text, desc, true, types.POINTS)
	if err != nil {
		return fmt.Errorf("building watermark: %w", err)
	}
	if err := api.AddWatermarksFile(in, out, nil, wm, conf()); err != nil {
		return fmt.Errorf("applying watermark: %w", err)
	}
	return nil
}

// AddPageNumbers stamps a page counter onto every page. The format string
// may contain {page} and {total} placeholders; position is one of the
// corner/edge names accepted by ValidPosition.
func AddPageNumbers(in, out, format, position string) error {
	anchor, ok := positions[position]
	if !ok {
		return fmt.Errorf("invalid position %q", position)
	}
	if format == "" {
		format = "{page}/{total}"
	}
	text := translatePageFormat(format)

	desc := fmt.Sprintf("font:Helvetica, points:10, pos:%s, off:-15 15, scale:1 abs, rot:0, fillc:#000000", anchor)
	wm, err := pdfcpu.ParseTextWatermarkDetails(text, desc, true, types.POINTS)
	if err != nil {
		return fmt.Errorf("building page number stamp: %w", err)
	}
	if err := api.AddWatermarksFile(in, out, nil, wm, conf()); err != nil {
		return fmt.Errorf("stamping page numbers: %w", err)
	}
	return nil
}

// RemovePages deletes the given 1-based pages from in.
func RemovePages(in, out string, pages []int) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to remove")
	}
	count, err := api.PageCountFile(in)
	if err != nil {
		return fmt.Errorf("counting pages: %w", err)
	}
	if len(uniquePages(pages)) >= count {
		return fmt.Errorf("cannot remove all %d pages", count)
	}
	if err := api.RemovePagesFile(in, out, pageStrings(pages), conf()); err != nil {
		return fmt.Errorf("removing pages: %w", err)
	}
	return nil
}

// Rearrange writes the pages of in to out in the given order. Pages may
// repeat or be omitted.
func Rearrange(in, out string, order []int) error {
	if len(order) == 0 {
		return fmt.Errorf("empty page order")
	}
	if err := api.CollectFile(in, out, pageStrings(order), conf()); err != nil {
		return fmt.Errorf("rearranging pages: %w", err)
	}
	return nil
}

// Encrypt protects in with AES-256. The owner password falls back to the
// user password when empty.
func Encrypt(in, out, userPW, ownerPW string) error {
	if userPW == "" {
		return fmt.Errorf("empty password")
	}
	if ownerPW == "" {
		ownerPW = userPW
	}
	c := conf()
	c.UserPW = userPW
	c.OwnerPW = ownerPW
	c.EncryptUsingAES = true
	c.EncryptKeyLength = 256
	if err := api.EncryptFile(in, out, c); err != nil {
		return fmt.Errorf("encrypting: %w", err)
	}
	return nil
}

// Decrypt removes password protection from in using password.
func Decrypt(in, out, password string) error {
	if password == "" {
		return fmt.Errorf("empty password")
	}
	c := conf()
	c.UserPW = password
	c.OwnerPW = password
	if err := api.DecryptFile(in, out, c); err != nil {
		return fmt.Errorf("decrypting (wrong password?): %w", err)
	}
	return nil
}

// ExtractImages writes all embedded raster images of in into outDir and
// returns how many files were produced.
func ExtractImages(in, outDir string) (int, error) {
	if err := api.ExtractImagesFile(in, outDir, nil, conf()); err != nil {
		return 0, fmt.Errorf("extracting images: %w", err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return 0, fmt.Errorf("reading image directory: %w", err)
	}
	return len(entries), nil
}

// ImagesToPDF builds a PDF with one page per input image.
func ImagesToPDF(images []string, out string) error {
	if len(images) == 0 {
		return fmt.Errorf("no images given")
	}
	if err := api.ImportImagesFile(images, out, nil, conf()); err != nil {
		return fmt.Errorf("converting images: %w", err)
	}
	return nil
}

// PageCount returns the number of pages of in.
func PageCount(in string) (int, error) {
	count, err := api.PageCountFile(in)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return count, nil
}

// Properties holds document metadata.
type Properties struct {
	PageCount int    `json:"page_count"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Creator   string `json:"creator,omitempty"`
	Producer  string `json:"producer,omitempty"`
	Created   string `json:"created,omitempty"`
	Modified  string `json:"modified,omitempty"`
	Version   string `json:"pdf_version,omitempty"`
	Encrypted bool   `json:"encrypted"`
	SizeBytes int64  `json:"size_bytes"`
}

// Info reads document metadata from in.
func Info(in string) (*Properties, error) {
	ctx, err := api.ReadContextFile(in)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	st, err := os.Stat(in)
	if err != nil {
		return nil, err
	}

	props := &Properties{
		PageCount: ctx.PageCount,
		Title:     ctx.Title,
		Author:    ctx.Author,
		Subject:   ctx.Subject,
		Creator:   ctx.Creator,
		Producer:  ctx.Producer,
		Created:   ctx.CreationDate,
		Modified:  ctx.ModDate,
		Encrypted: ctx.Encrypt != nil,
		SizeBytes: st.Size(),
	}
	if ctx.HeaderVersion != nil {
		props.Version = ctx.HeaderVersion.String()
	}
	return props, nil
}

// translatePageFormat rewrites {page}/{total} placeholders into the %p/%P
// variables the stamping engine substitutes per page.
func translatePageFormat(format string) string {
	format = strings.ReplaceAll(format, "{page}", "%p")
	return strings.ReplaceAll(format, "{total}", "%P")
}

func uniquePages(pages []int) []int {
	seen := make(map[int]bool, len(pages))
	var out []int
	for _, p := range pages {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
