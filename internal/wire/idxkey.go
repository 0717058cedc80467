package wire

import "github.com/marmos91/dbrt/pkg/idxkey"

// PackIdxKey appends a cardinality (number of elements) followed by each
// element's self-describing value encoding.
func (w *Writer) PackIdxKey(k idxkey.Key) error {
	w.PackInt32(int32(len(k.Elements)))
	for _, e := range k.Elements {
		if err := w.PackValue(e); err != nil {
			return err
		}
	}
	return nil
}

// UnpackIdxKey reads the encoding written by PackIdxKey.
func (r *Reader) UnpackIdxKey() (idxkey.Key, error) {
	count, err := r.UnpackInt32()
	if err != nil {
		return idxkey.Key{}, err
	}
	k := idxkey.Key{}
	for i := int32(0); i < count; i++ {
		v, err := r.UnpackValue()
		if err != nil {
			return idxkey.Key{}, err
		}
		k.Elements = append(k.Elements, v)
	}
	return k, nil
}
