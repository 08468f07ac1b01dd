package flist

import "github.com/innodb-tools/ibdparser/pkg/cursor"

// DecodeNode reads a 6-byte (page:4, offset:2) node address.
func DecodeNode(c *cursor.Cursor) (Node, error) {
	page, err := c.U32()
	if err != nil {
		return Node{}, err
	}
	offset, err := c.U16()
	if err != nil {
		return Node{}, err
	}
	return Node{Page: page, Offset: offset}, nil
}

// DecodeNodePtr reads a 12-byte prev/next node pair.
func DecodeNodePtr(c *cursor.Cursor) (NodePtr, error) {
	prev, err := DecodeNode(c)
	if err != nil {
		return NodePtr{}, err
	}
	next, err := DecodeNode(c)
	if err != nil {
		return NodePtr{}, err
	}
	return NodePtr{Prev: prev, Next: next}, nil
}

// DecodeBase reads a 16-byte list base (length:4, first:6, last:6).
func DecodeBase(c *cursor.Cursor) (Base, error) {
	length, err := c.U32()
	if err != nil {
		return Base{}, err
	}
	first, err := DecodeNode(c)
	if err != nil {
		return Base{}, err
	}
	last, err := DecodeNode(c)
	if err != nil {
		return Base{}, err
	}
	return Base{Length: length, First: first, Last: last}, nil
}

const (
	NodeSize = 6
	NodePtrSize = 12
	BaseSize = 16
)
