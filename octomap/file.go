package octomap

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// fileHeader is the magic first line of the binary map format. It must be
// left exactly as is for compatibility with other readers of the format.
const fileHeader = "# Octomap OcTree binary file"

// NewFromFile reads an octree in from the given file.
func NewFromFile(fn string, logger golog.Logger) (*OcTree, error) {
	switch filepath.Ext(fn) {
	case ".bt":
	default:
		return nil, errors.Errorf("do not know how to read file %q", fn)
	}
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	tree, err := ReadTree(f, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading octree from %q", fn)
	}
	return tree, nil
}

// ReadTree reads a binary octree from r. A malformed stream returns an
// error and no tree.
func ReadTree(r io.Reader, logger golog.Logger) (*OcTree, error) {
	br := bufio.NewReader(r)

	line, err := br.ReadString('\n')
	if err != nil {
		return nil, errors.Wrap(err, "error reading file header")
	}
	if strings.TrimRight(line, "\r\n") != fileHeader {
		return nil, errors.New("first line of file header does not start with the octree magic line")
	}

	size := -1
	res := 0.0
	for {
		line, err = br.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "error reading file header")
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "size "):
			size, err = strconv.Atoi(strings.TrimPrefix(line, "size "))
			if err != nil || size < 0 {
				return nil, errors.Errorf("invalid size entry %q in file header", line)
			}
		case strings.HasPrefix(line, "res "):
			res, err = strconv.ParseFloat(strings.TrimPrefix(line, "res "), 64)
			if err != nil || res <= 0 {
				return nil, errors.Errorf("invalid res entry %q in file header", line)
			}
		case line == "data":
			if size < 0 || res == 0 {
				return nil, errors.New("file header is missing size or res entries")
			}
			return readTreeData(br, size, res, logger)
		default:
			return nil, errors.Errorf("unknown keyword in file header: %q", line)
		}
	}
}

func readTreeData(br *bufio.Reader, size int, res float64, logger golog.Logger) (*OcTree, error) {
	tree, err := NewEmpty(res, logger)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return tree, nil
	}
	if err := readNodeBinary(br, tree.root, treeDepth); err != nil {
		return nil, err
	}
	if got := tree.Size(); got != size {
		logger.Warnf("octree file header claims %d nodes but %d were read", size, got)
	}
	return tree, nil
}

// readNodeBinary reads the two child bitfield bytes of an internal node and
// recurses into the children flagged as internal. Two bits per child:
// 00 absent, 01 occupied leaf, 10 free leaf, 11 internal child to follow.
func readNodeBinary(br *bufio.Reader, n *ocTreeNode, depth int) error {
	var fields [2]byte
	if _, err := io.ReadFull(br, fields[:]); err != nil {
		return errors.Wrap(err, "error reading node bitfields")
	}
	for i := 0; i < 8; i++ {
		v := (fields[i/4] >> (2 * (i % 4))) & 3
		switch v {
		case 0:
		case 1:
			n.children[i] = &ocTreeNode{nodeType: leafNodeOccupied}
		case 2:
			n.children[i] = &ocTreeNode{nodeType: leafNodeFree}
		case 3:
			if depth == 1 {
				return errors.New("corrupt stream: node at finest depth claims children")
			}
			n.children[i] = &ocTreeNode{nodeType: internalNode}
		}
	}
	for i := 0; i < 8; i++ {
		child := n.children[i]
		if child != nil && child.nodeType == internalNode {
			if err := readNodeBinary(br, child, depth-1); err != nil {
				return err
			}
		}
	}
	return nil
}

// MarshalBinary serializes the tree into the binary map format, the inverse
// of ReadTree.
func (t *OcTree) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", fileHeader)
	fmt.Fprintf(&buf, "# (feel free to add / change comments, but leave the first line as it is!)\n#\n")
	fmt.Fprintf(&buf, "size %d\n", t.Size())
	fmt.Fprintf(&buf, "res %s\n", strconv.FormatFloat(t.resolution, 'g', -1, 64))
	fmt.Fprintf(&buf, "data\n")
	if t.Size() > 0 {
		if err := writeNodeBinary(&buf, t.root); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeNodeBinary(buf *bytes.Buffer, n *ocTreeNode) error {
	var fields [2]byte
	for i, child := range n.children {
		if child == nil {
			continue
		}
		var v byte
		switch child.nodeType {
		case leafNodeOccupied:
			v = 1
		case leafNodeFree:
			v = 2
		case internalNode:
			v = 3
		}
		fields[i/4] |= v << (2 * (i % 4))
	}
	buf.Write(fields[:])
	for _, child := range n.children {
		if child != nil && child.nodeType == internalNode {
			if err := writeNodeBinary(buf, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteToFile writes the tree out to a binary map file.
func (t *OcTree) WriteToFile(fn string) (err error) {
	data, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	_, err = f.Write(data)
	return err
}
