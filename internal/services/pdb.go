package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yungbote/osteobridge-backend/internal/data/repos"
	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/platform/apierr"
	"github.com/yungbote/osteobridge-backend/internal/platform/dbctx"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/platform/storage"
)

const (
	PDBSubfolder  = "pdb_files"
	pdbExtension  = ".pdb"
	pdbMIME       = "chemical/x-pdb"
	plainTextMIME = "text/plain"
)

type ProteinOption struct {
	ProteinID   any    `json:"protein_id"`
	ProteinName string `json:"protein_name"`
}

type CompoundOption struct {
	CompoundID   any    `json:"compound_id"`
	CompoundName string `json:"compound_name"`
}

type PDBUpload struct {
	ProteinID   uint
	CompoundID  uint
	FileName    string
	ContentType string
	Content     []byte
}

type PDBUploadResult struct {
	ModelID      uint   `json:"data_id"`
	FileName     string `json:"filename"`
	RelativePath string `json:"relative_path"`
	FilePath     string `json:"file_path"`
}

type PDBService interface {
	ListProteins(ctx context.Context) ([]ProteinOption, error)
	ListCompounds(ctx context.Context) ([]CompoundOption, error)
	Upload(ctx context.Context, in PDBUpload) (*PDBUploadResult, error)
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
}

type pdbService struct {
	log       *logger.Logger
	proteins  repos.ProteinRepo
	compounds repos.CompoundRepo
	models    repos.MolecularModelRepo
	store     storage.BlobStore
}

func NewPDBService(
	log *logger.Logger,
	proteins repos.ProteinRepo,
	compounds repos.CompoundRepo,
	models repos.MolecularModelRepo,
	store storage.BlobStore,
) PDBService {
	return &pdbService{
		log:       log.With("service", "PDBService"),
		proteins:  proteins,
		compounds: compounds,
		models:    models,
		store:     store,
	}
}

func (s *pdbService) ListProteins(ctx context.Context) ([]ProteinOption, error) {
	rows, err := s.proteins.ListAll(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list proteins: %w", err)
	}
	out := []ProteinOption{{ProteinID: "", ProteinName: "Select protein"}}
	for _, p := range rows {
		out = append(out, ProteinOption{ProteinID: p.ProteinID, ProteinName: p.ProteinName})
	}
	return out, nil
}

func (s *pdbService) ListCompounds(ctx context.Context) ([]CompoundOption, error) {
	rows, err := s.compounds.ListAll(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list compounds: %w", err)
	}
	out := []CompoundOption{{CompoundID: "", CompoundName: "Select compound"}}
	for _, c := range rows {
		out = append(out, CompoundOption{CompoundID: c.CompoundID, CompoundName: c.CompoundName})
	}
	return out, nil
}

// ValidatePDBFile checks the name or declared type, then the content.
func ValidatePDBFile(filename, contentType string, content []byte) error {
	if strings.TrimSpace(filename) == "" {
		return badRequest("No file selected")
	}
	validExt := strings.HasSuffix(strings.ToLower(filename), pdbExtension)
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	validMIME := mediaType == pdbMIME || mediaType == plainTextMIME
	if !validExt && !validMIME {
		return badRequest("Only PDB files are allowed")
	}
	if !utf8.Valid(content) {
		return badRequest("File must be UTF-8 encoded text")
	}
	if !bytes.Contains(content, []byte("ATOM")) && !bytes.Contains(content, []byte("HETATM")) {
		return badRequest("Invalid PDB file format - must contain ATOM or HETATM records")
	}
	return nil
}

func (s *pdbService) Upload(ctx context.Context, in PDBUpload) (*PDBUploadResult, error) {
	if in.ProteinID == 0 || in.CompoundID == 0 {
		return nil, badRequest("Protein and Compound are required")
	}
	if err := ValidatePDBFile(in.FileName, in.ContentType, in.Content); err != nil {
		return nil, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	protein, err := s.proteins.GetByID(dbc, in.ProteinID)
	if err != nil {
		return nil, fmt.Errorf("load protein: %w", err)
	}
	if protein == nil {
		return nil, badRequest("Invalid protein selected")
	}
	compound, err := s.compounds.GetByID(dbc, in.CompoundID)
	if err != nil {
		return nil, fmt.Errorf("load compound: %w", err)
	}
	if compound == nil {
		return nil, badRequest("Invalid compound selected")
	}

	filename := PDBFileName(protein.ProteinName, compound.CompoundName)
	key := path.Join(PDBSubfolder, filename)
	info, err := s.store.Put(ctx, key, bytes.NewReader(in.Content), storage.PutOptions{ContentType: pdbMIME})
	if err != nil {
		return nil, fmt.Errorf("store pdb file: %w", err)
	}

	model, err := s.models.Upsert(dbc, &types.MolecularModel{
		ProteinID:  &protein.ProteinID,
		CompoundID: &compound.CompoundID,
		ModelName:  filename,
		FilePath:   key,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert molecular model: %w", err)
	}
	s.log.Info("PDB file stored",
		"protein_id", protein.ProteinID,
		"compound_id", compound.CompoundID,
		"key", key,
		"bytes", info.Size,
		"driver", s.store.Driver(),
	)

	filePath := info.URL
	if filePath == "" {
		filePath = key
	}
	return &PDBUploadResult{
		ModelID:      model.ModelID,
		FileName:     filename,
		RelativePath: key,
		FilePath:     filePath,
	}, nil
}

func (s *pdbService) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	if filename == "" || filename != SecureFilename(filename) || !strings.HasSuffix(filename, pdbExtension) {
		return nil, apierr.New(http.StatusNotFound, "not_found", errors.New("File not found"))
	}
	rc, err := s.store.Get(ctx, path.Join(PDBSubfolder, filename))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.New(http.StatusNotFound, "not_found", errors.New("File not found"))
	}
	if err != nil {
		return nil, fmt.Errorf("open pdb file: %w", err)
	}
	return rc, nil
}

// PDBFileName is "<Protein>_<Compound>.pdb" with both names sanitized.
func PDBFileName(proteinName, compoundName string) string {
	return nonEmpty(SecureFilename(proteinName), "protein") + "_" + nonEmpty(SecureFilename(compoundName), "compound") + pdbExtension
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var pathSeparators = strings.NewReplacer("/", " ", "\\", " ")

// SecureFilename reduces name to ASCII letters, digits, '.', '_' and '-',
// with separators and whitespace runs turned into '_' and leading/trailing
// '.' and '_' removed.
func SecureFilename(name string) string {
	var b strings.Builder
	for _, field := range strings.Fields(pathSeparators.Replace(name)) {
		if b.Len() > 0 {
			b.WriteByte('_')
		}
		for _, r := range field {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-') {
				b.WriteRune(r)
			}
		}
	}
	return strings.Trim(b.String(), "._")
}
