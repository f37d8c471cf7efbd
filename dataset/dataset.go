// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/biasmf/base"
	"github.com/gorse-io/biasmf/base/log"
	"github.com/gorse-io/biasmf/common/sparse"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Rating is a raw observation of an user rating an item.
type Rating struct {
	UserId string
	ItemId string
	Rating float64
}

// Dataset is a set of ratings encoded by a pair of user and item indexes. The
// shape of a dataset is the size of its indexes, so a dataset projected through
// the indexes of a training set has the shape of that training set.
type Dataset struct {
	userIndex *base.Index
	itemIndex *base.Index
	users     []int32
	items     []int32
	ratings   []float64

	matrixOnce sync.Once
	matrix     *sparse.CSR
	matrixErr  error
}

// Encode builds user and item indexes from ratings in first-seen order and
// encodes every rating with them.
func Encode(records []Rating) *Dataset {
	d := &Dataset{
		userIndex: base.NewMapIndex(),
		itemIndex: base.NewMapIndex(),
		users:     make([]int32, 0, len(records)),
		items:     make([]int32, 0, len(records)),
		ratings:   make([]float64, 0, len(records)),
	}
	for _, record := range records {
		d.users = append(d.users, d.userIndex.Add(record.UserId))
		d.items = append(d.items, d.itemIndex.Add(record.ItemId))
		d.ratings = append(d.ratings, record.Rating)
	}
	return d
}

// Project encodes ratings with existing indexes. Ratings of unknown users or
// unknown items are dropped and the indexes are never modified. Dropping is
// not an error, callers compare len(records) with Count() for coverage.
func Project(records []Rating, userIndex, itemIndex *base.Index) *Dataset {
	d := &Dataset{
		userIndex: userIndex,
		itemIndex: itemIndex,
		users:     make([]int32, 0, len(records)),
		items:     make([]int32, 0, len(records)),
		ratings:   make([]float64, 0, len(records)),
	}
	unknownUsers := mapset.NewThreadUnsafeSet[string]()
	unknownItems := mapset.NewThreadUnsafeSet[string]()
	for _, record := range records {
		userId := userIndex.ToNumber(record.UserId)
		itemId := itemIndex.ToNumber(record.ItemId)
		if userId == base.NotId {
			unknownUsers.Add(record.UserId)
		}
		if itemId == base.NotId {
			unknownItems.Add(record.ItemId)
		}
		if userId == base.NotId || itemId == base.NotId {
			continue
		}
		d.users = append(d.users, userId)
		d.items = append(d.items, itemId)
		d.ratings = append(d.ratings, record.Rating)
	}
	if dropped := len(records) - len(d.ratings); dropped > 0 {
		log.Logger().Debug("drop ratings of unknown users or items",
			zap.Int("n_ratings", len(records)),
			zap.Int("n_dropped", dropped),
			zap.Int("n_unknown_users", unknownUsers.Cardinality()),
			zap.Int("n_unknown_items", unknownItems.Cardinality()))
	}
	return d
}

// Project encodes ratings with the indexes of this dataset.
func (d *Dataset) Project(records []Rating) *Dataset {
	return Project(records, d.userIndex, d.itemIndex)
}

// Count returns the number of encoded ratings, duplicates included.
func (d *Dataset) Count() int {
	return len(d.ratings)
}

func (d *Dataset) CountUsers() int {
	return int(d.userIndex.Len())
}

func (d *Dataset) CountItems() int {
	return int(d.itemIndex.Len())
}

func (d *Dataset) GetUserIndex() *base.Index {
	return d.userIndex
}

func (d *Dataset) GetItemIndex() *base.Index {
	return d.itemIndex
}

// GetUsers returns the user index of each rating.
func (d *Dataset) GetUsers() []int32 {
	return d.users
}

// GetItems returns the item index of each rating.
func (d *Dataset) GetItems() []int32 {
	return d.items
}

func (d *Dataset) GetRatings() []float64 {
	return d.ratings
}

// Get returns the i-th encoded rating.
func (d *Dataset) Get(i int) (int32, int32, float64) {
	return d.users[i], d.items[i], d.ratings[i]
}

// Matrix returns the users x items observation matrix. It is built on first
// use and shared afterwards. Repeated (user, item) ratings are summed.
func (d *Dataset) Matrix() (*sparse.CSR, error) {
	d.matrixOnce.Do(func() {
		d.matrix, d.matrixErr = sparse.NewCSR(d.CountUsers(), d.CountItems(), d.users, d.items, d.ratings)
	})
	if d.matrixErr != nil {
		return nil, errors.Trace(d.matrixErr)
	}
	return d.matrix, nil
}

// MeanStdDev returns the mean and the standard deviation of ratings.
func (d *Dataset) MeanStdDev() (float64, float64) {
	if len(d.ratings) == 0 {
		return 0, 0
	}
	return stat.MeanStdDev(d.ratings, nil)
}

// SplitRecords shuffles ratings with seed and moves testRatio of them to the
// test split.
func SplitRecords(records []Rating, testRatio float64, seed int64) (train, test []Rating) {
	rng := base.NewRandomGenerator(seed)
	perm := rng.Perm(len(records))
	testSize := int(float64(len(records)) * testRatio)
	pick := func(i int, _ int) Rating {
		return records[i]
	}
	return lo.Map(perm[testSize:], pick), lo.Map(perm[:testSize], pick)
}
