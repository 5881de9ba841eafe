package mongoclient

import (
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

var (
	ErrNotStruct = fmt.Errorf("patchable is not a struct")
)

// MakeBsonM turns a patch document into the fields of a $set. A set pointer is
// written even when it points to a zero value (delisting sets isForSale to
// false); nil pointers and zero plain fields are left out.
func MakeBsonM(patchable interface{}) (bson.M, error) {
	val := reflect.Indirect(reflect.ValueOf(patchable))
	if val.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	res := bson.M{}
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanInterface() || field.IsZero() {
			continue
		}
		tag, err := bsoncodec.DefaultStructTagParser(val.Type().Field(i))
		if err != nil {
			return nil, err
		}
		if tag.Skip {
			continue
		}
		if field.Kind() == reflect.Ptr {
			res[tag.Name] = field.Elem().Interface()
		} else {
			res[tag.Name] = field.Interface()
		}
	}
	return res, nil
}
