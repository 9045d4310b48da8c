/*
go-synopsis condenses a long surveillance style video into a short synopsis
video.  Moving objects that were tracked through the source video (tubes) are
shifted in time so that objects seen hours apart play back together, without
any two of them covering the same pixels at the same time, and are blended
over a static background with the source frame index drawn next to each one.

The work is split into packages:

  - tube holds the tube data model, the displacement based refiner, the class
    grouper and the tube file codec
  - schedule places tubes on the synopsis timeline with greedy first fit
    space-time packing
  - composite renders the scheduled tubes over the background
  - background, video and render adapt decoding, background estimation and
    encoding with GoCV

Pipeline ties them together for one run.  See the example/synopsis command
for end to end usage.
*/
package synopsis
