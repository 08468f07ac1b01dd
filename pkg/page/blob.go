package page

// BLOB pages hold continuation data for externally-stored ("off-page")
// column values (spec.md §4.5, §9): a next-page pointer, a data length,
// and the payload itself. Grounded on the teacher's
// storage/wrapper/page/blob_page_wrapper.go for field naming.
const (
	blobNextPageOffset = FilHeaderLen
	blobLengthOffset   = blobNextPageOffset + 4
	blobDataOffset     = blobLengthOffset + 4
)

func init() {
	register(TypeBlob, newBlobPage)
	register(TypeZblob, newBlobPage)
	register(TypeZblob2, newBlobPage)
}

// BlobPage decodes a BLOB/ZBLOB/ZBLOB2 page.
type BlobPage struct {
	*Base
	NextPage uint32 // UndefinedPage => this is the last page of the chain
	Length   uint32
	Data     []byte
}

func newBlobPage(raw []byte, base *Base) (Page, error) {
	p := &BlobPage{Base: base}
	c := base.Cursor(blobNextPageOffset)

	var err error
	if p.NextPage, err = c.U32(); err != nil {
		return nil, err
	}
	if p.Length, err = c.U32(); err != nil {
		return nil, err
	}

	avail := len(raw) - blobDataOffset - FilTrailerLen
	n := int(p.Length)
	if n > avail {
		n = avail
	}
	if n < 0 {
		n = 0
	}
	data, err := c.Read(n)
	if err != nil {
		return nil, err
	}
	p.Data = data
	return p, nil
}

// HasNext reports whether another BLOB page continues this chain.
func (p *BlobPage) HasNext() (uint32, bool) { return OptionalPage(p.NextPage) }
