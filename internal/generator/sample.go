package generator

// SampleSpecYAML is the built-in demo spec served by the sample endpoint. It
// exercises every spec section so a smoke run covers the full pipeline.
const SampleSpecYAML = `name: TextSummarizer
display_name: Text Summarizer
description: Summarizes long text into a configurable number of sentences
category: utilities
platforms:
  - flowise
requirements:
  - Accept a block of input text
  - Produce a summary limited to the requested sentence count
  - Reject empty input with a clear error
dependencies: []
inputs:
  - name: text
    label: Input Text
    type: string
    required: true
  - name: maxSentences
    label: Max Sentences
    type: number
    required: false
outputs:
  - name: summary
    label: Summary
    type: string
author: smithy
version: 1.0.0
`
