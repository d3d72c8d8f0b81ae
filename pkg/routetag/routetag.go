// Package routetag turns a route into a short url safe string and back. A tag is the base64 url
// encoding of the little endian uint64 node ids of the route.
package routetag

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
)

var ErrInvalidTag = errors.New("invalid route tag")

const idSize = 8

func Encode(p datastructure.Path) string {
	ids := p.GetIndices()
	buf := make([]byte, len(ids)*idSize)
	for i, id := range ids {
		binary.LittleEndian.PutUint64(buf[i*idSize:], uint64(id))
	}
	return base64.URLEncoding.EncodeToString(buf)
}

func Decode(tag string) (datastructure.Path, error) {
	buf, err := base64.URLEncoding.DecodeString(tag)
	if err != nil {
		return datastructure.Path{}, fmt.Errorf("%w: %v", ErrInvalidTag, err)
	}
	if len(buf)%idSize != 0 {
		return datastructure.Path{}, fmt.Errorf("%w: %d bytes is not a whole number of node ids", ErrInvalidTag, len(buf))
	}
	ids := make([]datastructure.NodeID, len(buf)/idSize)
	for i := range ids {
		ids[i] = datastructure.NodeID(binary.LittleEndian.Uint64(buf[i*idSize:]))
	}
	return datastructure.NewPath(ids), nil
}

// DecodeOn decodes a tag and checks that it is a walk in g.
func DecodeOn(g *datastructure.ApplicationGraph, tag string) (datastructure.Path, error) {
	p, err := Decode(tag)
	if err != nil {
		return p, err
	}
	if p.IsEmpty() {
		return p, fmt.Errorf("%w: empty route", ErrInvalidTag)
	}
	if _, _, err := datastructure.PathElements(g, p.GetIndices()); err != nil {
		return datastructure.Path{}, fmt.Errorf("%w: %w", ErrInvalidTag, err)
	}
	return p, nil
}
