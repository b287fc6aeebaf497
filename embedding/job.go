// Copyright 2026 Hubforge Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package embedding holds the embedding side channel: a durable job
// queue fed by the ingest pipeline and a worker that turns resource
// text into vectors. Queue failures never fail a sync; jobs are
// retried when the worker comes back around.
package embedding

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Job asks the worker to (re)embed a set of resources for one tenant.
type Job struct {
	TenantID    uuid.UUID
	ResourceIDs []uuid.UUID
	EnqueuedAt  time.Time
}

// JobMUS serializes jobs in MUS format for durable queue storage.
var JobMUS = jobSer{}

type jobSer struct{}

func (jobSer) Size(job Job) (size int) {
	size = ord.String.Size(job.TenantID.String())
	size += varint.PositiveInt.Size(len(job.ResourceIDs))
	for _, id := range job.ResourceIDs {
		size += ord.String.Size(id.String())
	}
	size += varint.Int64.Size(job.EnqueuedAt.UnixMicro())
	return
}

func (jobSer) Marshal(job Job, bs []byte) (n int) {
	n = ord.String.Marshal(job.TenantID.String(), bs)
	n += varint.PositiveInt.Marshal(len(job.ResourceIDs), bs[n:])
	for _, id := range job.ResourceIDs {
		n += ord.String.Marshal(id.String(), bs[n:])
	}
	n += varint.Int64.Marshal(job.EnqueuedAt.UnixMicro(), bs[n:])
	return
}

func (jobSer) Unmarshal(bs []byte) (job Job, n int, err error) {
	tenant, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	if job.TenantID, err = uuid.Parse(tenant); err != nil {
		err = fmt.Errorf("parse tenant id: %w", err)
		return
	}

	count, n1, err := varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	job.ResourceIDs = make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		var raw string
		raw, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		var id uuid.UUID
		if id, err = uuid.Parse(raw); err != nil {
			err = fmt.Errorf("parse resource id: %w", err)
			return
		}
		job.ResourceIDs = append(job.ResourceIDs, id)
	}

	micros, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	job.EnqueuedAt = time.UnixMicro(micros).UTC()
	return
}

// MarshalJob serializes a job to bytes.
func MarshalJob(job *Job) []byte {
	buf := make([]byte, JobMUS.Size(*job))
	JobMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalJob deserializes a job from bytes.
func UnmarshalJob(data []byte) (*Job, error) {
	job, _, err := JobMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
